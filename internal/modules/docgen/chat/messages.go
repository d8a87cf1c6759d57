package chat

import (
	"fmt"
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/grounding"
)

const answerSystemPrompt = `Du beantwortest Fragen zu einer Vorhabensbeschreibung für ein Förderprogramm.
Antworte in der Sprache der Frage, knapp und konkret, und beziehe dich auf Abschnitte mit ihrer Nummer.
Ändere keine Inhalte; wenn der Nutzer etwas ändern möchte, erkläre, dass er den Abschnitt und die Änderung nennen kann.`

const contextSummaryChars = 1500

func buildAnswerPrompt(content documents.Content, factual grounding.FactualContext, recent []documents.ChatMessage, question string) string {
	var b strings.Builder
	b.WriteString("Dokument:\n")
	for _, sec := range content.Sections {
		fmt.Fprintf(&b, "### %s %s\n", sec.ID, sec.Title)
		switch {
		case sec.IsMilestoneTable():
			b.WriteString("(Meilensteintabelle)\n")
		case strings.TrimSpace(sec.Content) == "":
			b.WriteString("(leer)\n")
		default:
			b.WriteString(strings.TrimSpace(sec.Content))
			b.WriteString("\n")
		}
	}
	b.WriteString("\nKontext zum Unternehmen:\n")
	b.WriteString(factual.Summary(contextSummaryChars))
	b.WriteString("\n")
	if len(recent) > 0 {
		b.WriteString("\nBisheriger Verlauf:\n")
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, strings.TrimSpace(m.Text))
		}
	}
	fmt.Fprintf(&b, "\nFrage: %s\n", question)
	return b.String()
}

func proposalText(proposed, failed, skipped []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I've prepared changes for %s. Please review and confirm them.", sectionList(proposed))
	if len(failed) > 0 {
		fmt.Fprintf(&b, " I could not revise %s.", sectionList(failed))
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, " %s cannot be edited via chat.", capitalize(sectionList(skipped)))
	}
	return b.String()
}

func failureText(failed, skipped []string) string {
	switch {
	case len(failed) > 0 && len(skipped) > 0:
		return fmt.Sprintf("I could not revise %s, and %s cannot be edited via chat. Please try again.", sectionList(failed), sectionList(skipped))
	case len(skipped) > 0:
		return fmt.Sprintf("%s cannot be edited via chat.", capitalize(sectionList(skipped)))
	default:
		return fmt.Sprintf("I could not revise %s. Please try again.", sectionList(failed))
	}
}

func sectionList(ids []string) string {
	if len(ids) == 1 {
		return "section " + ids[0]
	}
	return "sections " + strings.Join(ids, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
