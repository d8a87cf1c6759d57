package editor

import (
	"regexp"
	"strings"
)

// Kind scales how much an edit may change a section.
type Kind string

const (
	KindVague    Kind = "vague"
	KindSpecific Kind = "specific"
	KindRewrite  Kind = "rewrite"
)

var (
	rewriteWords = wordPattern(
		"rewrite", "re-write", "from scratch", "completely", "start over",
		"neu schreiben", "neu formulieren", "umschreiben", "komplett(?:e|en|er)?", "grundlegend überarbeiten",
	)
	specificWords = wordPattern(
		"shorter", "shorten", "concise(?:ly)?", "condense", "longer", "(?:more|less) technical", "technical",
		"formal(?:ly)?", "simpler", "simplify", "add", "remove", "delete", "replace", "mention", "include",
		"fix", "correct", "translate", "bullets?", "tone", "less", "fewer", "focus on", "emphasi[sz]e",
		"kürzer(?:e|en)?", "kürzen", "prägnant(?:er|e|en)?", "länger", "technischer", "fachlicher", "formeller", "einfacher",
		"ergänze", "ergänzen", "hinzufügen", "füge", "entferne", "streiche", "ersetze", "erwähne",
		"korrigiere", "übersetze", "aufzählung(?:en)?", "stichpunkt(?:e|en)?", "weniger", "betone", "fokus",
	)
)

// wordPattern matches any of the alternatives as whole words. RE2 \b is ASCII-only, so the
// boundaries are spelled out to cover umlauts.
func wordPattern(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(words, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

// Classify maps an instruction to its effort class. Rewrite wins over specific, which
// wins over the vague default ("improve", "expand", "verbessern").
func Classify(instruction string) Kind {
	s := strings.ToLower(strings.TrimSpace(instruction))
	switch {
	case rewriteWords.MatchString(s):
		return KindRewrite
	case specificWords.MatchString(s):
		return KindSpecific
	default:
		return KindVague
	}
}

func effortRule(k Kind) string {
	switch k {
	case KindRewrite:
		return "Die Anweisung verlangt eine Neufassung: formuliere den Abschnitt vollständig neu, behalte aber Thema und Fakten bei. Der neue Text darf höchstens 30–50 % länger sein als der bisherige."
	case KindSpecific:
		return "Die Anweisung ist konkret: setze genau diese Änderung um und lass den Rest unverändert. Der Text soll dadurch nicht unnötig länger werden."
	default:
		return "Die Anweisung ist allgemein (z. B. verbessern oder erweitern): vertiefe den vorhandenen Text moderat, etwa 20–40 % länger, ohne neue Themen einzuführen."
	}
}
