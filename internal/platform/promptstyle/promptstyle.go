package promptstyle

import "strings"

const marker = "VORHABEN_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to system prompts for German funding
// application work. It leaves the task itself untouched and is applied at most once.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou write and edit German funding applications (Vorhabensbeschreibungen).")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse only facts from the provided context. Never invent figures, partners, dates or citations.")
	b.WriteString("\nIf information is missing, write conservatively instead of guessing.")
	switch mode {
	case "json":
		b.WriteString("\nReturn exactly one JSON object with the requested keys and no extra commentary.")
	case "edit":
		b.WriteString("\nReturn only the revised section text, without headings, code fences or commentary.")
	default:
		b.WriteString("\nAnswer concisely and refer to sections by their number.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
