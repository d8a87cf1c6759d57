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

type UserTemplateRepo interface {
	Create(dbc dbctx.Context, row *types.UserTemplate) error
	// GetForOwner only returns templates owned by ownerEmail; foreign rows read as not found.
	GetForOwner(dbc dbctx.Context, id uuid.UUID, ownerEmail string) (*types.UserTemplate, error)
	ListByOwner(dbc dbctx.Context, ownerEmail string, limit int) ([]*types.UserTemplate, error)
}

type userTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTemplateRepo(db *gorm.DB, log *logger.Logger) UserTemplateRepo {
	return &userTemplateRepo{db: db, log: log.With("repo", "UserTemplateRepo")}
}

func (r *userTemplateRepo) Create(dbc dbctx.Context, row *types.UserTemplate) error {
	if row == nil {
		return fmt.Errorf("missing template")
	}
	row.OwnerEmail = strings.ToLower(strings.TrimSpace(row.OwnerEmail))
	if row.OwnerEmail == "" {
		return fmt.Errorf("missing owner_email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).Create(row).Error
}

func (r *userTemplateRepo) GetForOwner(dbc dbctx.Context, id uuid.UUID, ownerEmail string) (*types.UserTemplate, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if ownerEmail == "" {
		return nil, fmt.Errorf("missing owner_email")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.UserTemplate
	if err := txx.WithContext(dbc.Ctx).
		Where("id = ? AND owner_email = ?", id, ownerEmail).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userTemplateRepo) ListByOwner(dbc dbctx.Context, ownerEmail string, limit int) ([]*types.UserTemplate, error) {
	ownerEmail = strings.ToLower(strings.TrimSpace(ownerEmail))
	if ownerEmail == "" {
		return nil, fmt.Errorf("missing owner_email")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserTemplate
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.UserTemplate{}).
		Where("owner_email = ?", ownerEmail).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
