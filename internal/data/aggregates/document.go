package aggregates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
)

type DocumentAggregateDeps struct {
	Base BaseDeps

	Documents repos.DocumentRepo
	Headings  headings.Policy
}

type documentAggregate struct {
	deps DocumentAggregateDeps
}

func NewDocumentAggregate(deps DocumentAggregateDeps) domainagg.DocumentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &documentAggregate{deps: deps}
}

func (a *documentAggregate) Contract() domainagg.Contract {
	return domainagg.DocumentAggregateContract
}

func (a *documentAggregate) Load(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	const op = "Docgen.Document.Load"
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing document id", nil)
	}
	if a.deps.Documents == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "document aggregate repos not configured", nil)
	}
	doc, err := a.deps.Documents.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainagg.NewError(domainagg.CodeNotFound, op, "document not found", err)
		}
		return nil, MapError(op, err)
	}
	return doc, nil
}

func (a *documentAggregate) Create(ctx context.Context, doc *documents.Document) error {
	const op = "Docgen.Document.Create"
	if doc == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing document", nil)
	}
	if doc.CompanyID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing company_id", nil)
	}
	if a.deps.Documents == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "document aggregate repos not configured", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		return a.deps.Documents.Create(dbc, doc)
	})
}

// Save writes the whole row when doc.Version still matches the stored version. The heading
// lock is evaluated against the persisted row inside the same transaction, so a concurrent
// confirm-headings cannot be bypassed by a stale in-memory copy.
func (a *documentAggregate) Save(ctx context.Context, doc *documents.Document) error {
	const op = "Docgen.Document.Save"
	if doc == nil || doc.ID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing document id", nil)
	}
	if a.deps.Documents == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "document aggregate repos not configured", nil)
	}
	if _, err := doc.Content(); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "content_json is not a valid document", err)
	}
	if _, err := doc.Messages(); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "chat_history is not a valid message list", err)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		stored, err := a.deps.Documents.GetByID(dbc, doc.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainagg.NewError(domainagg.CodeNotFound, op, "document not found", err)
			}
			return err
		}
		if err := RequireVersionMatch(stored.Version, doc.Version); err != nil {
			return err
		}
		if err := headings.CheckTransition(stored, doc, a.deps.Headings); err != nil {
			return err
		}
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, doc.TableName(), doc.ID, doc.Version, map[string]any{
			"title":              doc.Title,
			"content_json":       doc.ContentJSON,
			"chat_history":       doc.ChatHistory,
			"headings_confirmed": doc.HeadingsConfirmed,
			"template_id":        doc.TemplateID,
			"template_name":      doc.TemplateName,
			"funding_program_id": doc.FundingProgramID,
			"version":            doc.Version + 1,
			"updated_at":         now,
		})
		if err != nil {
			return err
		}
		return RequireCASSuccess(ok, "document was modified concurrently")
	})
	if err != nil {
		return err
	}
	doc.Version++
	doc.UpdatedAt = now
	return nil
}
