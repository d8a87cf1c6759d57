// Package generation fills a document's empty sections batch by batch.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

// TemplateSource supplies the skeleton for a document that has no sections yet.
type TemplateSource interface {
	ForDocument(ctx context.Context, doc *documents.Document, ownerEmail string) (documents.TemplateSpec, error)
}

type Request struct {
	DocumentID uuid.UUID
	OwnerEmail string
	// Force regenerates every text section, not only empty ones.
	Force  bool
	Inputs batch.Inputs
}

type FailedBatch struct {
	SectionIDs []string `json:"section_ids"`
	Error      string   `json:"error"`
}

type Result struct {
	Document      *documents.Document `json:"-"`
	GeneratedIDs  []string            `json:"generated_section_ids"`
	FailedBatches []FailedBatch       `json:"failed_batches,omitempty"`
}

type Pipeline struct {
	log       *logger.Logger
	docs      aggregates.DocumentAggregate
	templates TemplateSource
	gen       *batch.Generator
}

func NewPipeline(log *logger.Logger, docs aggregates.DocumentAggregate, templates TemplateSource, gen *batch.Generator) *Pipeline {
	return &Pipeline{log: log.With("service", "GenerationPipeline"), docs: docs, templates: templates, gen: gen}
}

// Generate runs batches strictly in order. Each successful batch is persisted before the
// next starts, so a later failure keeps earlier progress. A failed batch is recorded and
// skipped; the run fails only when no batch succeeds.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Result, error) {
	const op = "generation.Generate"
	doc, err := p.docs.Load(ctx, req.DocumentID)
	if err != nil {
		return Result{}, err
	}
	content, err := doc.Content()
	if err != nil {
		return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	if len(content.Sections) == 0 {
		spec, err := p.templates.ForDocument(ctx, doc, req.OwnerEmail)
		if err != nil {
			return Result{}, err
		}
		content = spec.Skeleton()
		if err := doc.SetContent(content); err != nil {
			return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if doc.TemplateID == nil && doc.TemplateName == "" {
			doc.TemplateName = spec.Name
		}
		if err := p.docs.Save(ctx, doc); err != nil {
			return Result{}, err
		}
		p.log.Info("document seeded from template", "document_id", doc.ID, "template", spec.Name, "sections", len(content.Sections))
	}

	targets := selectTargets(content.Sections, req.Force)
	res := Result{Document: doc, GeneratedIDs: []string{}}
	if len(targets) == 0 {
		p.log.Info("nothing to generate", "document_id", doc.ID)
		return res, nil
	}

	batches := batch.SplitIntoBatches(targets, p.gen.TargetSize())
	for i, b := range batches {
		ids := sectionIDs(b)
		out, err := p.gen.GenerateBatch(ctx, b, req.Inputs)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			p.log.Warn("batch failed, continuing", "document_id", doc.ID, "batch", i+1, "of", len(batches), "sections", ids, "error", err)
			res.FailedBatches = append(res.FailedBatches, FailedBatch{SectionIDs: ids, Error: aggregates.MessageOf(err)})
			continue
		}
		doc, err = p.persist(ctx, doc, out)
		if err != nil {
			return res, err
		}
		res.Document = doc
		res.GeneratedIDs = append(res.GeneratedIDs, ids...)
		p.log.Info("batch persisted", "document_id", doc.ID, "batch", i+1, "of", len(batches), "sections", ids)
	}

	if len(res.GeneratedIDs) == 0 {
		return res, aggregates.NewError(aggregates.CodeGenerationFailed, op,
			fmt.Sprintf("all %d batches failed", len(batches)), nil)
	}
	return res, nil
}

// persist merges out into doc and saves it. On a version conflict it reloads once and
// reapplies the batch to whatever sections still exist.
func (p *Pipeline) persist(ctx context.Context, doc *documents.Document, out map[string]string) (*documents.Document, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if err := merge(doc, out); err != nil {
			return nil, err
		}
		err := p.docs.Save(ctx, doc)
		if err == nil {
			return doc, nil
		}
		if !aggregates.IsCode(err, aggregates.CodeConflict) || attempt == 1 {
			return nil, err
		}
		p.log.Warn("document changed during generation, reloading", "document_id", doc.ID)
		if doc, err = p.docs.Load(ctx, doc.ID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func merge(doc *documents.Document, out map[string]string) error {
	content, err := doc.Content()
	if err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, "generation.merge", err)
	}
	byID := make(map[string]string, len(out))
	for id, text := range out {
		byID[sectionid.Normalize(id)] = text
	}
	for i := range content.Sections {
		if text, ok := byID[sectionid.Normalize(content.Sections[i].ID)]; ok {
			content.Sections[i].Content = text
		}
	}
	return doc.SetContent(content)
}

func selectTargets(sections []documents.Section, force bool) []documents.Section {
	out := make([]documents.Section, 0, len(sections))
	for _, s := range sections {
		if !s.IsText() {
			continue
		}
		if force || strings.TrimSpace(s.Content) == "" {
			out = append(out, s)
		}
	}
	return out
}

func sectionIDs(sections []documents.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.ID)
	}
	return out
}
