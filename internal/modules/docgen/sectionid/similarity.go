package sectionid

import "github.com/pmezard/go-difflib/difflib"

// Similarity is the Ratcliff/Obershelp ratio 2*M/T over runes, where M is the number of
// characters in matching blocks and T the total length of both strings.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
