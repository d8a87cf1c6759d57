// Package sectionid normalizes hierarchical section ids and resolves free-text
// section titles to ids.
package sectionid

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// Same set as unicode.IsSpace; RE2 \s alone is ASCII-only and misses \v.
	dotSpacing      = regexp.MustCompile(`[\s\v\x{85}\p{Z}]*\.[\s\v\x{85}\p{Z}]*`)
	numberingPrefix = regexp.MustCompile(`^\d+(?:[.,]\d+)*\.?\s+`)
)

// Normalize canonicalizes an id: commas become dots, whitespace around dots is
// removed, trailing dots and whitespace are stripped. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = dotSpacing.ReplaceAllString(s, ".")
	return strings.TrimRightFunc(s, func(r rune) bool { return r == '.' || unicode.IsSpace(r) })
}

// Equal compares two ids after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// StripNumbering removes a leading "2.1 " style prefix from a title.
func StripNumbering(title string) string {
	return strings.TrimSpace(numberingPrefix.ReplaceAllString(strings.TrimSpace(title), ""))
}

// Compare orders ids segment by segment, numerically where both segments are numbers.
func Compare(a, b string) int {
	as := strings.Split(Normalize(a), ".")
	bs := strings.Split(Normalize(b), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aErr := strconv.Atoi(as[i])
		bi, bErr := strconv.Atoi(bs[i])
		if aErr == nil && bErr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// Index maps normalized ids to the canonical id as stored in the document.
type Index map[string]string

func NewIndex(ids []string) Index {
	idx := make(Index, len(ids))
	for _, id := range ids {
		n := Normalize(id)
		if n == "" {
			continue
		}
		if _, ok := idx[n]; !ok {
			idx[n] = id
		}
	}
	return idx
}

// Lookup returns the canonical id for any spelling of it.
func (idx Index) Lookup(raw string) (string, bool) {
	id, ok := idx[Normalize(raw)]
	return id, ok
}
