package documents

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type CompanyRepo interface {
	Create(dbc dbctx.Context, row *types.Company) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, log *logger.Logger) CompanyRepo {
	return &companyRepo{db: db, log: log.With("repo", "CompanyRepo")}
}

func (r *companyRepo) Create(dbc dbctx.Context, row *types.Company) error {
	if row == nil {
		return fmt.Errorf("missing company")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).Create(row).Error
}

func (r *companyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Company
	if err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *companyRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Company{}).
		Where("id = ?", id).
		Updates(updates).Error
}
