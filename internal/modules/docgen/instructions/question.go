package instructions

import (
	"strings"
	"unicode"
)

// Single-word openers must match the whole first word; phrases match as prefixes.
var questionWords = map[string]bool{
	"what": true, "why": true, "how": true, "when": true, "where": true, "who": true, "which": true,
	"is": true, "are": true, "does": true, "do": true, "should": true, "explain": true,
	"was": true, "warum": true, "wieso": true, "weshalb": true, "wie": true, "wann": true, "wo": true,
	"wer": true, "welche": true, "welcher": true, "welches": true, "ist": true, "sind": true,
	"erkläre": true, "erklär": true, "erklaere": true,
}

var questionPhrases = []string{
	"can you explain", "could you explain", "tell me", "what's", "gibt es", "kannst du erklären",
	"kannst du mir sagen", "können sie erklären",
}

// IsQuestion reports whether a chat message asks about the document rather than requesting an edit.
func IsQuestion(message string) bool {
	m := strings.TrimSpace(message)
	if m == "" {
		return false
	}
	if strings.HasSuffix(m, "?") {
		return true
	}
	lower := strings.ToLower(m)
	for _, p := range questionPhrases {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return questionWords[first]
}
