package editor

import (
	"fmt"
	"strings"
)

const systemPrompt = `Du bist Lektor und Editor einer bestehenden Vorhabensbeschreibung, nicht ihr Autor.
Du überarbeitest genau einen Abschnitt nach der Anweisung des Nutzers.
Ersetze den vorhandenen Text nicht vollständig, außer die Anweisung verlangt ausdrücklich eine Neufassung.
Stütze jede Änderung auf den bestehenden Text und die bereitgestellten Fakten. Führe keine Themen ein, die zu anderen Abschnitten gehören.
Ändere niemals die Überschrift des Abschnitts und gib sie nicht mit aus.
Antworte nur mit dem überarbeiteten Abschnittstext.`

func buildPrompt(req Request, kind Kind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Abschnitt %s: %s\n\n", req.SectionID, req.Title)

	b.WriteString("Aktueller Inhalt:\n")
	if cur := strings.TrimSpace(req.CurrentContent); cur != "" {
		b.WriteString(cur)
	} else {
		b.WriteString("(noch leer; schreibe einen ersten Entwurf nur für dieses Thema)")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Anweisung des Nutzers:\n%s\n\n", strings.TrimSpace(req.Instruction))
	fmt.Fprintf(&b, "Umfang der Änderung (%s):\n%s\n\n", kind, effortRule(kind))

	b.WriteString("Fakten zum Unternehmen (einzige zulässige Faktenquelle):\n")
	b.WriteString(req.Factual.Format())
	b.WriteString("\n\n")

	b.WriteString("Stilvorgaben:\n")
	b.WriteString(strings.TrimSpace(req.StyleGuide))
	b.WriteString("\n\n")

	b.WriteString("Regeln:\n")
	b.WriteString("- Bleib beim Thema dieses Abschnitts.\n")
	b.WriteString("- Erfinde keine Zahlen, Partner, Termine oder Quellen.\n")
	b.WriteString("- Keine Überschrift, keine Codeblöcke, keine Kommentare zur Änderung.\n")
	return b.String()
}
