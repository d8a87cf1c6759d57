package instructions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

var (
	anyID = regexp.MustCompile(idPattern)

	actionWords = []string{
		"improve", "better", "rewrite", "change", "expand", "shorten", "shorter", "longer", "more", "less",
		"add", "remove", "make", "fix", "edit", "update", "rephrase", "formal", "concise",
		"verbesser", "besser", "änder", "aender", "erweiter", "kürz", "kuerz", "ergänz", "ergaenz",
		"überarbeit", "ueberarbeit", "mehr", "weniger", "hinzufüg", "entfern", "formulier", "schreib",
	}
)

// NeedsClarification returns a question for the user when a message is not an actionable edit.
// It returns ("", false) when the message parses into valid changes, title references included.
func NeedsClarification(message string, validIDs []string, sections []documents.Section, lastEditedIDs []string) (string, bool) {
	changes := Parse(message, validIDs, sections)
	if len(changes) == 0 {
		changes = ParseStrict(message, validIDs)
	}
	if len(changes) > 0 && Validate(changes, validIDs) == nil {
		return "", false
	}

	valid := sectionid.NewIndex(validIDs)
	var unknown, mentioned []string
	seen := map[string]bool{}
	for _, c := range changes {
		if _, ok := valid.Lookup(c.SectionID); !ok {
			n := sectionid.Normalize(c.SectionID)
			seen[n] = true
			unknown = append(unknown, n)
		}
	}
	for _, loc := range anyID.FindAllStringIndex(message, -1) {
		if partialID(message, loc[0]) {
			continue
		}
		raw := message[loc[0]:loc[1]]
		n := sectionid.Normalize(raw)
		if seen[n] {
			continue
		}
		seen[n] = true
		if id, ok := valid.Lookup(raw); ok {
			mentioned = append(mentioned, id)
		} else if strings.ContainsAny(raw, ".,") || len(validIDs) == 0 || looksLikeSectionRef(message, loc[0]) {
			unknown = append(unknown, n)
		}
	}

	switch {
	case len(unknown) > 0:
		return unknownSectionsMessage(unknown, validIDs) + ". Which section did you mean?", true
	case len(mentioned) > 0:
		return fmt.Sprintf("What would you like me to change in section %s?", strings.Join(mentioned, ", ")), true
	case hasActionWord(message):
		if len(lastEditedIDs) > 0 {
			return fmt.Sprintf("Which section should I apply this to? Did you mean section %s, which you edited last?",
				strings.Join(lastEditedIDs, ", ")), true
		}
		return "Which section would you like me to change? Please name it, e.g. \"2.1: make it more concise\".", true
	default:
		return "I'm not sure what you would like me to do. Name a section and the change, e.g. \"2.1: make it more concise\", or ask a question.", true
	}
}

func hasActionWord(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range actionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// looksLikeSectionRef treats a bare integer as a section reference only after a section keyword.
func looksLikeSectionRef(message string, pos int) bool {
	before := strings.ToLower(strings.TrimSpace(message[:pos]))
	for _, kw := range []string{"section", "abschnitt", "kapitel", "sektion", "punkt"} {
		if strings.HasSuffix(before, kw) {
			return true
		}
	}
	return false
}
