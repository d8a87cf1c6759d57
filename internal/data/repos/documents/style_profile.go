package documents

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type StyleProfileRepo interface {
	// Upsert stores a profile keyed by its combined source hash; an existing row with the
	// same hash is overwritten.
	Upsert(dbc dbctx.Context, row *types.StyleProfile) error
	GetByHash(dbc dbctx.Context, hash string) (*types.StyleProfile, error)
	// Latest returns the most recently written profile, or nil when none exists.
	Latest(dbc dbctx.Context) (*types.StyleProfile, error)
}

type styleProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStyleProfileRepo(db *gorm.DB, log *logger.Logger) StyleProfileRepo {
	return &styleProfileRepo{db: db, log: log.With("repo", "StyleProfileRepo")}
}

func (r *styleProfileRepo) Upsert(dbc dbctx.Context, row *types.StyleProfile) error {
	if row == nil {
		return fmt.Errorf("missing style profile")
	}
	row.CombinedHash = strings.TrimSpace(row.CombinedHash)
	if row.CombinedHash == "" {
		return fmt.Errorf("missing combined_hash")
	}
	row.UpdatedAt = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "combined_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"profile", "source_count", "updated_at"}),
		}).
		Create(row).Error
}

func (r *styleProfileRepo) GetByHash(dbc dbctx.Context, hash string) (*types.StyleProfile, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, fmt.Errorf("missing hash")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.StyleProfile
	if err := txx.WithContext(dbc.Ctx).Where("combined_hash = ?", hash).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *styleProfileRepo) Latest(dbc dbctx.Context) (*types.StyleProfile, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var rows []*types.StyleProfile
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.StyleProfile{}).
		Order("updated_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
