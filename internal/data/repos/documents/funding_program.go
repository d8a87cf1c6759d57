package documents

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type FundingProgramRepo interface {
	Create(dbc dbctx.Context, row *types.FundingProgram) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.FundingProgram, error)
}

type fundingProgramRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFundingProgramRepo(db *gorm.DB, log *logger.Logger) FundingProgramRepo {
	return &fundingProgramRepo{db: db, log: log.With("repo", "FundingProgramRepo")}
}

func (r *fundingProgramRepo) Create(dbc dbctx.Context, row *types.FundingProgram) error {
	if row == nil {
		return fmt.Errorf("missing funding program")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).Create(row).Error
}

func (r *fundingProgramRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.FundingProgram, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.FundingProgram
	if err := txx.WithContext(dbc.Ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
