package styleguide

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/textclean"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

const (
	maxCombinedChars  = 100000
	documentSeparator = "\n\n---DOCUMENT_SEPARATOR---\n\n"
)

const extractSystemPrompt = `You are an expert in analyzing writing styles and document structure. You extract writing patterns into JSON, ignoring factual content.`

// Extractor derives a Profile from historical application texts.
type Extractor struct {
	log     *logger.Logger
	llm     openai.Client
	timeout time.Duration
}

func NewExtractor(log *logger.Logger, llm openai.Client, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Extractor{log: log.With("service", "StyleExtractor"), llm: llm, timeout: timeout}
}

// Extract returns the profile for texts together with their combined hash.
func (e *Extractor) Extract(ctx context.Context, texts []string) (*Profile, string, error) {
	const op = "styleguide.Extract"
	kept := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, "", aggregates.NewError(aggregates.CodeValidation, op, "no document texts provided for style extraction", nil)
	}
	hash := CombinedHash(kept)

	combined := strings.Join(kept, documentSeparator)
	if r := []rune(combined); len(r) > maxCombinedChars {
		e.log.Warn("combined style source too long, truncating", "chars", len(r))
		combined = string(r[:maxCombinedChars])
	}

	temp := 0.0
	resp, err := e.llm.Complete(ctx, openai.Request{
		System:      extractSystemPrompt,
		User:        extractUserPrompt(combined),
		JSONMode:    true,
		Temperature: &temp,
		MaxTokens:   2000,
		Timeout:     e.timeout,
	})
	if err != nil {
		return nil, "", aggregates.Wrap(aggregates.CodeGenerationFailed, op, err)
	}
	p, err := Parse([]byte(textclean.ExtractJSONObject(resp.Text)))
	if err != nil {
		return nil, "", aggregates.Wrap(aggregates.CodeGenerationFailed, op, err)
	}
	e.log.Info("style profile extracted", "sources", len(kept), "hash", hash)
	return p, hash, nil
}

// CombinedHash is the order-independent identity of a set of source texts.
func CombinedHash(texts []string) string {
	hashes := make([]string, 0, len(texts))
	for _, t := range texts {
		sum := sha256.Sum256([]byte(t))
		hashes = append(hashes, hex.EncodeToString(sum[:]))
	}
	sort.Strings(hashes)
	sum := sha256.Sum256([]byte(strings.Join(hashes, "|")))
	return hex.EncodeToString(sum[:])
}

func extractUserPrompt(combined string) string {
	return fmt.Sprintf(`Extract ONLY writing style patterns, tone, structure and storytelling techniques from the historical Vorhabensbeschreibung documents below.
Do NOT extract factual content, domain knowledge or specific information. Focus on HOW the text is written, not WHAT it says.

---
%s
---

Return a JSON object where each key holds a list of strings:
1. structure_patterns: how the document is organized
2. tone_characteristics: tone and voice
3. writing_style_rules: concrete writing conventions
4. storytelling_flow: how information is presented narratively
5. common_section_headings: typical headings or structural elements

Ignore tables and images. If a category has no clear patterns, return an empty list.
Output ONLY the JSON object.`, combined)
}
