package documents

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.Document) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	// FindForCompany returns the document of the given type for a company, scoped to the
	// funding program when one is given. A nil row with nil error means none exists.
	FindForCompany(dbc dbctx.Context, companyID uuid.UUID, fundingProgramID *uuid.UUID, docType string) (*types.Document, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: log.With("repo", "DocumentRepo")}
}

func (r *documentRepo) tx(dbc dbctx.Context) *gorm.DB {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx)
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("missing document")
	}
	if doc.CompanyID == uuid.Nil {
		return fmt.Errorf("missing company_id")
	}
	if strings.TrimSpace(doc.Type) == "" {
		doc.Type = types.DocumentTypeVorhabensbeschreibung
	}
	return r.tx(dbc).Create(doc).Error
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.Document
	if err := r.tx(dbc).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *documentRepo) FindForCompany(dbc dbctx.Context, companyID uuid.UUID, fundingProgramID *uuid.UUID, docType string) (*types.Document, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("missing company_id")
	}
	if strings.TrimSpace(docType) == "" {
		docType = types.DocumentTypeVorhabensbeschreibung
	}
	q := r.tx(dbc).
		Model(&types.Document{}).
		Where("company_id = ? AND type = ?", companyID, docType)
	if fundingProgramID != nil && *fundingProgramID != uuid.Nil {
		q = q.Where("funding_program_id = ?", *fundingProgramID)
	} else {
		q = q.Where("funding_program_id IS NULL")
	}
	var rows []*types.Document
	if err := q.Order("created_at ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *documentRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.Document, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("missing company_id")
	}
	var out []*types.Document
	if err := r.tx(dbc).
		Model(&types.Document{}).
		Where("company_id = ?", companyID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
