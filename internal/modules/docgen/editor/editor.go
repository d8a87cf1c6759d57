// Package editor revises a single existing section according to a user instruction.
// It never generates sections from scratch; initial content is the batch package's job.
package editor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/grounding"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/styleguide"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/textclean"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

type Config struct {
	Timeout   time.Duration
	MaxTokens int
}

func ConfigFromEnv() Config {
	return Config{
		Timeout:   envutil.Seconds("DOCGEN_EDIT_TIMEOUT_SECONDS", 90*time.Second),
		MaxTokens: envutil.Int("DOCGEN_EDIT_MAX_TOKENS", 3000),
	}
}

// Request describes one section edit. StyleGuide falls back to the editor's style cache.
type Request struct {
	SectionID      string
	Title          string
	Type           string
	CurrentContent string
	Instruction    string
	Factual        grounding.FactualContext
	StyleGuide     string
}

type Editor struct {
	log    *logger.Logger
	llm    openai.Client
	styles *styleguide.Cache
	cfg    Config
}

func New(log *logger.Logger, llm openai.Client, styles *styleguide.Cache, cfg Config) *Editor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Editor{log: log.With("service", "SectionEditor"), llm: llm, styles: styles, cfg: cfg}
}

// EditSection makes exactly one model call. Failures are returned immediately with
// CodeGenerationFailed; edits are never retried.
func (e *Editor) EditSection(ctx context.Context, req Request) (string, error) {
	const op = "editor.EditSection"
	if strings.TrimSpace(req.Type) == documents.SectionTypeMilestoneTable {
		return "", aggregates.NewError(aggregates.CodeValidation, op, "milestone tables cannot be edited via chat: "+req.SectionID, nil)
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return "", aggregates.NewError(aggregates.CodeValidation, op, "empty instruction for section "+req.SectionID, nil)
	}
	if strings.TrimSpace(req.StyleGuide) == "" {
		req.StyleGuide = e.styles.Guide(ctx)
	}
	kind := Classify(req.Instruction)

	ctx, span := otel.Tracer("vorhaben/docgen").Start(ctx, "editor.edit_section")
	span.SetAttributes(attribute.String("docgen.section_id", req.SectionID), attribute.String("docgen.edit_kind", string(kind)))
	defer span.End()

	start := time.Now()
	resp, err := e.llm.Complete(ctx, openai.Request{
		System:    systemPrompt,
		User:      buildPrompt(req, kind),
		MaxTokens: e.cfg.MaxTokens,
		Timeout:   e.cfg.Timeout,
		NoRetry:   true,
		Style:     "edit",
	})
	if err != nil {
		observability.Current().ObserveEdit(string(kind), "error", time.Since(start))
		span.RecordError(err)
		e.log.Warn("section edit failed", "section_id", req.SectionID, "kind", kind, "error", err)
		return "", aggregates.Wrap(aggregates.CodeGenerationFailed, op, err)
	}
	out := textclean.StripLeadingTitle(textclean.StripCodeFences(resp.Text), req.SectionID, req.Title)
	if out == "" {
		observability.Current().ObserveEdit(string(kind), "empty", time.Since(start))
		return "", aggregates.NewError(aggregates.CodeGenerationFailed, op, fmt.Sprintf("empty edit result for section %s", req.SectionID), nil)
	}
	observability.Current().ObserveEdit(string(kind), "ok", time.Since(start))
	return out, nil
}
