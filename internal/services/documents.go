package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/generation"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/templates"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/ctxutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

const defaultDocumentTitle = "Vorhabensbeschreibung"

type GetOrCreateInput struct {
	CompanyID        uuid.UUID
	FundingProgramID *uuid.UUID
	TemplateSource   string
	TemplateRef      string
}

type DocumentService interface {
	GetOrCreate(ctx context.Context, in GetOrCreateInput) (*documents.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content documents.Content) (*documents.Document, error)
	ConfirmHeadings(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	Generate(ctx context.Context, id uuid.UUID, force bool) (generation.Result, error)
}

type documentService struct {
	log       *logger.Logger
	docs      domainagg.DocumentAggregate
	docRepo   repos.DocumentRepo
	companies repos.CompanyRepo
	programs  repos.FundingProgramRepo
	resolver  *templates.Resolver
	inputs    ContextProvider
	pipeline  *generation.Pipeline
}

func NewDocumentService(
	log *logger.Logger,
	docs domainagg.DocumentAggregate,
	docRepo repos.DocumentRepo,
	companies repos.CompanyRepo,
	programs repos.FundingProgramRepo,
	resolver *templates.Resolver,
	inputs ContextProvider,
	pipeline *generation.Pipeline,
) DocumentService {
	return &documentService{
		log:       log.With("service", "DocumentService"),
		docs:      docs,
		docRepo:   docRepo,
		companies: companies,
		programs:  programs,
		resolver:  resolver,
		inputs:    inputs,
		pipeline:  pipeline,
	}
}

// GetOrCreate returns the company's Vorhabensbeschreibung for the funding program, creating
// it seeded from the resolved template when none exists. An explicit template reference
// wins over the funding program's template, which wins over the default.
func (s *documentService) GetOrCreate(ctx context.Context, in GetOrCreateInput) (*documents.Document, error) {
	const op = "documents.GetOrCreate"
	if in.CompanyID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing company_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.companies.GetByID(dbc, in.CompanyID); err != nil {
		return nil, notFoundOr(op, "company not found", err)
	}
	var program *documents.FundingProgram
	if in.FundingProgramID != nil && *in.FundingProgramID != uuid.Nil {
		p, err := s.programs.GetByID(dbc, *in.FundingProgramID)
		if err != nil {
			return nil, notFoundOr(op, "funding program not found", err)
		}
		program = p
	} else {
		in.FundingProgramID = nil
	}

	existing, err := s.docRepo.FindForCompany(dbc, in.CompanyID, in.FundingProgramID, documents.DocumentTypeVorhabensbeschreibung)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if existing != nil {
		return existing, nil
	}

	owner := ctxutil.OwnerEmail(ctx)
	source, ref := strings.TrimSpace(in.TemplateSource), strings.TrimSpace(in.TemplateRef)
	if ref == "" && program != nil && strings.TrimSpace(program.TemplateName) != "" {
		source, ref = documents.TemplateSourceSystem, program.TemplateName
	}
	if ref == "" {
		source, ref = documents.TemplateSourceSystem, documents.DefaultTemplateName
	}
	spec, err := s.resolver.Resolve(ctx, source, ref, owner)
	if err != nil {
		return nil, err
	}

	doc := &documents.Document{
		ID:               uuid.New(),
		CompanyID:        in.CompanyID,
		FundingProgramID: in.FundingProgramID,
		Type:             documents.DocumentTypeVorhabensbeschreibung,
		Title:            defaultDocumentTitle,
	}
	if spec.Source == documents.TemplateSourceUser {
		id, perr := uuid.Parse(ref)
		if perr == nil {
			doc.TemplateID = &id
		}
	} else {
		doc.TemplateName = spec.Name
		if doc.TemplateName == "" {
			doc.TemplateName = ref
		}
	}
	if err := doc.SetContent(spec.Skeleton()); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if err := doc.SetMessages(nil); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("document created", "document_id", doc.ID, "company_id", in.CompanyID, "template", ref, "sections", len(spec.Sections))
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return s.docs.Load(ctx, id)
}

// UpdateContent replaces the whole section list. Once headings are confirmed the aggregate
// rejects renamed or added sections.
func (s *documentService) UpdateContent(ctx context.Context, id uuid.UUID, content documents.Content) (*documents.Document, error) {
	const op = "documents.UpdateContent"
	if err := validateContent(content); err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	doc, err := s.docs.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.SetContent(content); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ConfirmHeadings locks the section structure. Confirming twice is a no-op.
func (s *documentService) ConfirmHeadings(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	const op = "documents.ConfirmHeadings"
	doc, err := s.docs.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := doc.Content()
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if !doc.HeadingsConfirmed && len(content.Sections) == 0 {
		return nil, domainagg.NewError(domainagg.CodePreconditionFailed, op, "document has no sections to confirm", nil)
	}
	if !headings.Confirm(doc) {
		return doc, nil
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("headings confirmed", "document_id", id)
	return doc, nil
}

func (s *documentService) Generate(ctx context.Context, id uuid.UUID, force bool) (generation.Result, error) {
	ctx, span := otel.Tracer("vorhaben/docgen").Start(ctx, "documents.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", id.String()), attribute.Bool("generate.force", force))

	doc, err := s.docs.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return generation.Result{}, err
	}
	inputs, err := s.inputs.Inputs(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return generation.Result{}, err
	}
	res, err := s.pipeline.Generate(ctx, generation.Request{
		DocumentID: id,
		OwnerEmail: ctxutil.OwnerEmail(ctx),
		Force:      force,
		Inputs:     inputs,
	})
	span.SetAttributes(
		attribute.Int("generate.sections", len(res.GeneratedIDs)),
		attribute.Int("generate.failed_batches", len(res.FailedBatches)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func validateContent(c documents.Content) error {
	seen := make(map[string]struct{}, len(c.Sections))
	for i, sec := range c.Sections {
		id := sectionid.Normalize(sec.ID)
		if id == "" {
			return fmt.Errorf("section %d has no id", i+1)
		}
		if strings.TrimSpace(sec.Title) == "" {
			return fmt.Errorf("section %s has no title", sec.ID)
		}
		if t := strings.TrimSpace(sec.Type); t != "" && t != documents.SectionTypeText && t != documents.SectionTypeMilestoneTable {
			return fmt.Errorf("section %s has unknown type %q", sec.ID, sec.Type)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate section id %s", sec.ID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func notFoundOr(op, msg string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainagg.NewError(domainagg.CodeNotFound, op, msg, err)
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}
