package sectionid

import (
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

// DefaultTitleThreshold is the minimum similarity for the fuzzy tier of FindByTitle.
const DefaultTitleThreshold = 0.8

type candidate struct {
	id    string
	score float64
}

// FindByTitle resolves a free-text title to a section id in three tiers:
// exact match of the numbering-stripped lowercase title, containment in either
// direction ranked by similarity, and similarity >= threshold.
// Ties go to the higher similarity, then the lower id.
func FindByTitle(query string, sections []documents.Section, threshold float64) (string, bool) {
	q := titleKey(query)
	if q == "" || len(sections) == 0 {
		return "", false
	}
	if threshold <= 0 {
		threshold = DefaultTitleThreshold
	}

	var exact, contained, fuzzy []candidate
	for _, s := range sections {
		t := titleKey(s.Title)
		if t == "" {
			continue
		}
		score := Similarity(q, t)
		switch {
		case t == q:
			exact = append(exact, candidate{id: s.ID, score: 1})
		case strings.Contains(t, q) || strings.Contains(q, t):
			contained = append(contained, candidate{id: s.ID, score: score})
		case score >= threshold:
			fuzzy = append(fuzzy, candidate{id: s.ID, score: score})
		}
	}
	for _, tier := range [][]candidate{exact, contained, fuzzy} {
		if best, ok := pick(tier); ok {
			return best.id, true
		}
	}
	return "", false
}

func pick(cs []candidate) (candidate, bool) {
	if len(cs) == 0 {
		return candidate{}, false
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if c.score > best.score || (c.score == best.score && Compare(c.id, best.id) < 0) {
			best = c
		}
	}
	return best, true
}

func titleKey(title string) string {
	s := strings.ToLower(StripNumbering(title))
	return strings.Join(strings.Fields(s), " ")
}
