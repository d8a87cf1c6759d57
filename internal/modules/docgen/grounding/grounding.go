// Package grounding formats the factual source data a generation or edit prompt is
// allowed to draw on. It never fetches anything itself.
package grounding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxEnrichmentChars bounds the free-text enrichment included in a prompt.
const MaxEnrichmentChars = 12000

// CompanyProfile is the structured extraction of a company's website and meeting notes.
type CompanyProfile struct {
	CompanyName        string   `json:"company_name,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	ProductsOrServices []string `json:"products_or_services,omitempty"`
	BusinessModel      string   `json:"business_model,omitempty"`
	Market             string   `json:"market,omitempty"`
	InnovationFocus    string   `json:"innovation_focus,omitempty"`
	CompanySize        string   `json:"company_size,omitempty"`
	Location           string   `json:"location,omitempty"`
	KnownGaps          []string `json:"known_gaps,omitempty"`
}

// IsEmpty reports whether the profile carries no usable facts.
func (p *CompanyProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Industry == "" && len(p.ProductsOrServices) == 0 && p.BusinessModel == "" &&
		p.Market == "" && p.InnovationFocus == "" && p.CompanySize == "" && p.Location == ""
}

// ParseProfile decodes a stored profile. Empty or "null" input yields nil without error.
func ParseProfile(raw []byte) (*CompanyProfile, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == "{}" {
		return nil, nil
	}
	var p CompanyProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode company profile: %w", err)
	}
	if p.IsEmpty() {
		return nil, nil
	}
	return &p, nil
}

// FactualContext is what a prompt may state as fact about the applicant.
type FactualContext struct {
	CompanyName string
	Profile     *CompanyProfile
	Enrichment  string
}

// Format renders the context for a prompt. The structured profile is preferred; the
// enrichment text is only used when no profile exists.
func (f FactualContext) Format() string {
	var b strings.Builder
	if name := strings.TrimSpace(f.CompanyName); name != "" {
		fmt.Fprintf(&b, "Unternehmen: %s\n", name)
	}
	if !f.Profile.IsEmpty() {
		p := f.Profile
		writeField(&b, "Branche", p.Industry)
		if len(p.ProductsOrServices) > 0 {
			writeField(&b, "Produkte/Dienstleistungen", strings.Join(p.ProductsOrServices, ", "))
		}
		writeField(&b, "Geschäftsmodell", p.BusinessModel)
		writeField(&b, "Markt/Zielgruppe", p.Market)
		writeField(&b, "Innovationsschwerpunkt", p.InnovationFocus)
		writeField(&b, "Unternehmensgröße", p.CompanySize)
		writeField(&b, "Standort", p.Location)
		if len(p.KnownGaps) > 0 {
			writeField(&b, "Fehlende Informationen (nicht erfinden)", strings.Join(p.KnownGaps, ", "))
		}
		return strings.TrimSpace(b.String())
	}
	if text := strings.TrimSpace(f.Enrichment); text != "" {
		b.WriteString("Zusatzinformationen (Website/Gesprächsnotizen):\n")
		b.WriteString(truncateRunes(text, MaxEnrichmentChars))
		return strings.TrimSpace(b.String())
	}
	if b.Len() == 0 {
		return "Keine Unternehmensinformationen verfügbar."
	}
	return strings.TrimSpace(b.String())
}

// Summary is a short one-paragraph view used when answering chat questions.
func (f FactualContext) Summary(maxChars int) string {
	if maxChars <= 0 {
		maxChars = 1500
	}
	return truncateRunes(f.Format(), maxChars)
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// Provider loads the factual context for a company. Implementations live outside the core.
type Provider interface {
	FactualContext(ctx context.Context, companyID uuid.UUID) (FactualContext, error)
}

// Static is a Provider returning the same context for every company.
type Static FactualContext

func (s Static) FactualContext(context.Context, uuid.UUID) (FactualContext, error) {
	return FactualContext(s), nil
}
