package batch

import (
	"fmt"
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

const systemPrompt = `Du bist ein erfahrener Autor von Vorhabensbeschreibungen für öffentliche Förderprogramme in Deutschland.
Du schreibst den Inhalt neuer Abschnitte auf Basis der bereitgestellten Fakten.
Antworte ausschließlich mit einem JSON-Objekt, dessen Schlüssel genau die angefragten Abschnittsnummern sind und dessen Werte den Abschnittstext als String enthalten.`

// buildPrompt assembles the user prompt in a fixed order: rules, facts, style, task.
func buildPrompt(sections []documents.Section, in Inputs) string {
	var b strings.Builder

	b.WriteString("## 1. Förderrichtlinien und Bewertungskriterien\n")
	if rules := strings.TrimSpace(in.Rules); rules != "" {
		b.WriteString(rules)
	} else {
		b.WriteString("Keine spezifischen Richtlinien hinterlegt. Schreibe allgemein förderfähig und überprüfbar.")
	}
	b.WriteString("\n\n")

	b.WriteString("## 2. Fakten zum Unternehmen (einzige zulässige Faktenquelle)\n")
	b.WriteString(in.Factual.Format())
	b.WriteString("\n\n")

	b.WriteString("## 3. Stilvorgaben\n")
	b.WriteString(strings.TrimSpace(in.StyleGuide))
	b.WriteString("\n\n")

	b.WriteString("## 4. Aufgabe\n")
	b.WriteString("Schreibe den Inhalt für folgende Abschnitte:\n")
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		fmt.Fprintf(&b, "- %s: %s\n", s.ID, s.Title)
		keys = append(keys, fmt.Sprintf("%q", s.ID))
	}
	b.WriteString("\nRegeln:\n")
	b.WriteString("- Erfinde keine Zahlen, Partner, Termine oder Quellen. Fehlt eine Information, formuliere zurückhaltend.\n")
	b.WriteString("- Jeder Abschnitt behandelt nur sein eigenes Thema; keine Überschneidungen mit anderen Abschnitten.\n")
	b.WriteString("- Wiederhole die Überschrift nicht im Text und verwende keine Markdown-Überschriften.\n")
	b.WriteString("- Mehrere Absätze sind erlaubt; Aufzählungen nur, wo sie die Lesbarkeit verbessern.\n")
	fmt.Fprintf(&b, "\nGib ein JSON-Objekt mit genau diesen Schlüsseln zurück: %s\n", strings.Join(keys, ", "))
	return b.String()
}
