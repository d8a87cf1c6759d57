package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/grounding"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/styleguide"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/textclean"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

type Config struct {
	MaxRetries int
	Timeout    time.Duration
	MaxTokens  int
	TargetSize int
}

func DefaultConfig() Config {
	return Config{MaxRetries: 2, Timeout: 180 * time.Second, MaxTokens: 6000, TargetSize: DefaultTargetSize}
}

// ConfigFromEnv reads DOCGEN_BATCH_* and DOCGEN_GENERATE_TIMEOUT_SECONDS.
func ConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		MaxRetries: envutil.Int("DOCGEN_BATCH_MAX_RETRIES", def.MaxRetries),
		Timeout:    envutil.Seconds("DOCGEN_GENERATE_TIMEOUT_SECONDS", def.Timeout),
		MaxTokens:  envutil.Int("DOCGEN_BATCH_MAX_TOKENS", def.MaxTokens),
		TargetSize: envutil.Int("DOCGEN_BATCH_TARGET_SIZE", def.TargetSize),
	}
}

// Inputs is the context shared by every batch of one generation run.
// An empty StyleGuide is filled from the generator's style cache.
type Inputs struct {
	Factual    grounding.FactualContext
	Rules      string
	StyleGuide string
}

// GenerationError details why a batch produced no usable content.
type GenerationError struct {
	SectionIDs []string
	Missing    []string
	Attempts   int
	Cause      error
}

func (e *GenerationError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("batch %s failed after %d attempts: missing sections %s",
			strings.Join(e.SectionIDs, ","), e.Attempts, strings.Join(e.Missing, ", "))
	case e.Cause != nil:
		return fmt.Sprintf("batch %s failed after %d attempts: %v", strings.Join(e.SectionIDs, ","), e.Attempts, e.Cause)
	default:
		return fmt.Sprintf("batch %s failed after %d attempts", strings.Join(e.SectionIDs, ","), e.Attempts)
	}
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Generator writes initial content for new sections. It has no notion of existing
// content; revisions go through the editor package.
type Generator struct {
	log    *logger.Logger
	llm    openai.Client
	styles *styleguide.Cache
	cfg    Config
}

func NewGenerator(log *logger.Logger, llm openai.Client, styles *styleguide.Cache, cfg Config) *Generator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultTargetSize
	}
	return &Generator{log: log.With("service", "BatchGenerator"), llm: llm, styles: styles, cfg: cfg}
}

func (g *Generator) TargetSize() int { return g.cfg.TargetSize }

// GenerateBatch returns content for every section of the batch keyed by section id, or
// an error with CodeGenerationFailed wrapping a *GenerationError. Partial results are
// never returned.
func (g *Generator) GenerateBatch(ctx context.Context, sections []documents.Section, in Inputs) (map[string]string, error) {
	const op = "batch.GenerateBatch"
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.IsMilestoneTable() {
			return nil, aggregates.NewError(aggregates.CodeValidation, op, "milestone tables cannot be generated: "+s.ID, nil)
		}
		ids = append(ids, s.ID)
	}
	if len(sections) == 0 {
		return map[string]string{}, nil
	}
	if strings.TrimSpace(in.StyleGuide) == "" {
		in.StyleGuide = g.styles.Guide(ctx)
	}

	ctx, span := otel.Tracer("vorhaben/docgen").Start(ctx, "batch.generate")
	span.SetAttributes(attribute.StringSlice("docgen.section_ids", ids))
	defer span.End()

	prompt := buildPrompt(sections, in)
	start := time.Now()
	attempts := g.cfg.MaxRetries + 1
	var (
		lastErr     error
		lastMissing []string
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			attempts = attempt - 1
			break
		}
		resp, err := g.llm.Complete(ctx, openai.Request{
			System:    systemPrompt,
			User:      prompt,
			JSONMode:  true,
			MaxTokens: g.cfg.MaxTokens,
			Timeout:   g.cfg.Timeout,
			NoRetry:   true,
		})
		if err != nil {
			lastErr, lastMissing = err, nil
			g.log.Warn("batch completion failed", "sections", ids, "attempt", attempt, "error", err)
			continue
		}
		out, missing, err := parseResponse(resp.Text, sections)
		if err != nil {
			lastErr, lastMissing = err, nil
			g.log.Warn("batch response rejected", "sections", ids, "attempt", attempt, "error", err)
			continue
		}
		if len(missing) > 0 {
			lastErr, lastMissing = nil, missing
			g.log.Warn("batch response incomplete", "sections", ids, "attempt", attempt, "missing", missing)
			continue
		}
		observability.Current().ObserveBatch("ok", len(out), 0, time.Since(start))
		g.log.Info("batch generated", "sections", ids, "attempt", attempt)
		return out, nil
	}

	observability.Current().ObserveBatch("failed", 0, len(ids), time.Since(start))
	genErr := &GenerationError{SectionIDs: ids, Missing: lastMissing, Attempts: attempts, Cause: lastErr}
	span.RecordError(genErr)
	return nil, aggregates.NewError(aggregates.CodeGenerationFailed, op, genErr.Error(), genErr)
}

// parseResponse enforces the contract: one JSON object, a string value for every
// expected id. Keys are matched after id normalization; extra keys are ignored.
// Blank values count as missing.
func parseResponse(raw string, sections []documents.Section) (map[string]string, []string, error) {
	body := textclean.ExtractJSONObject(raw)
	if body == "" {
		return nil, nil, errors.New("response contains no JSON object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	byID := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		byID[sectionid.Normalize(k)] = v
	}

	out := make(map[string]string, len(sections))
	var missing []string
	for _, s := range sections {
		v, ok := byID[sectionid.Normalize(s.ID)]
		if !ok || string(v) == "null" {
			missing = append(missing, s.ID)
			continue
		}
		var text string
		if err := json.Unmarshal(v, &text); err != nil {
			return nil, nil, fmt.Errorf("section %s: value is not a string", s.ID)
		}
		text = textclean.StripLeadingTitle(text, s.ID, s.Title)
		if strings.TrimSpace(text) == "" {
			missing = append(missing, s.ID)
			continue
		}
		out[s.ID] = text
	}
	return out, missing, nil
}
