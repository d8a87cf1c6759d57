// Package styleguide turns an extracted writing-style profile into prompt guidance and
// keeps the current profile in an explicit, caller-owned cache.
package styleguide

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Profile describes HOW historical applications are written, never what they say.
type Profile struct {
	StructurePatterns     []string `json:"structure_patterns"`
	ToneCharacteristics   []string `json:"tone_characteristics"`
	WritingStyleRules     []string `json:"writing_style_rules"`
	StorytellingFlow      []string `json:"storytelling_flow"`
	CommonSectionHeadings []string `json:"common_section_headings"`
}

func (p *Profile) IsEmpty() bool {
	return p == nil || (len(p.StructurePatterns) == 0 && len(p.ToneCharacteristics) == 0 &&
		len(p.WritingStyleRules) == 0 && len(p.StorytellingFlow) == 0 && len(p.CommonSectionHeadings) == 0)
}

// Parse decodes a profile leniently: a category that is missing or not a list of
// strings becomes empty.
func Parse(raw []byte) (*Profile, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode style profile: %w", err)
	}
	return &Profile{
		StructurePatterns:     stringList(generic["structure_patterns"]),
		ToneCharacteristics:   stringList(generic["tone_characteristics"]),
		WritingStyleRules:     stringList(generic["writing_style_rules"]),
		StorytellingFlow:      stringList(generic["storytelling_flow"]),
		CommonSectionHeadings: stringList(generic["common_section_headings"]),
	}, nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DefaultGuide is used when no style profile has been extracted yet.
const DefaultGuide = `Stil: formell, sachlich und überzeugend, wie in deutschen Förderanträgen üblich.
Struktur: vom Problem über den Lösungsansatz zum erwarteten Nutzen.
Regeln: klare, präzise Sätze; Fachbegriffe korrekt verwenden; keine Marketingfloskeln; Aussagen mit den bereitgestellten Fakten belegen.
Erzählfluss: erst Kontext und Ausgangslage, dann Details und Ergebnisse.`

// Format renders the profile as prompt guidance, or DefaultGuide when p is empty.
func Format(p *Profile) string {
	if p.IsEmpty() {
		return DefaultGuide
	}
	var b strings.Builder
	writeList(&b, "Strukturmuster", p.StructurePatterns)
	writeList(&b, "Tonalität", p.ToneCharacteristics)
	writeList(&b, "Schreibregeln", p.WritingStyleRules)
	writeList(&b, "Erzählfluss", p.StorytellingFlow)
	writeList(&b, "Übliche Abschnittsüberschriften", p.CommonSectionHeadings)
	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(label)
	b.WriteString(":\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
}
