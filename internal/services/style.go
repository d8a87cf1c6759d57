package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/styleguide"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type StyleProfileView struct {
	Profile      *styleguide.Profile `json:"profile,omitempty"`
	CombinedHash string              `json:"combined_hash,omitempty"`
	SourceCount  int                 `json:"source_count"`
	Guide        string              `json:"guide"`
}

type StyleService interface {
	Current(ctx context.Context) (StyleProfileView, error)
	Regenerate(ctx context.Context, texts []string) (StyleProfileView, error)
}

type styleService struct {
	log       *logger.Logger
	profiles  repos.StyleProfileRepo
	extractor *styleguide.Extractor
	cache     *styleguide.Cache
}

func NewStyleService(log *logger.Logger, profiles repos.StyleProfileRepo, extractor *styleguide.Extractor, cache *styleguide.Cache) StyleService {
	return &styleService{
		log:       log.With("service", "StyleService"),
		profiles:  profiles,
		extractor: extractor,
		cache:     cache,
	}
}

// StyleProfileLoader backs the style cache with the style_profile table. LatestKey reads the
// most recent row; any other key is a combined hash.
func StyleProfileLoader(profiles repos.StyleProfileRepo) styleguide.Loader {
	return func(ctx context.Context, key string) (*styleguide.Profile, error) {
		var (
			row *documents.StyleProfile
			err error
		)
		dbc := dbctx.Context{Ctx: ctx}
		if key == "" || key == styleguide.LatestKey {
			row, err = profiles.Latest(dbc)
		} else {
			row, err = profiles.GetByHash(dbc, key)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
		}
		if err != nil || row == nil {
			return nil, err
		}
		return styleguide.Parse(row.Profile)
	}
}

func (s *styleService) Current(ctx context.Context) (StyleProfileView, error) {
	row, err := s.profiles.Latest(dbctx.Context{Ctx: ctx})
	if err != nil {
		return StyleProfileView{}, domainagg.Wrap(domainagg.CodeInternal, "style.Current", err)
	}
	view := StyleProfileView{Guide: s.cache.Guide(ctx)}
	if row != nil {
		view.CombinedHash = row.CombinedHash
		view.SourceCount = row.SourceCount
		if p, perr := styleguide.Parse(row.Profile); perr == nil {
			view.Profile = p
		}
	}
	return view, nil
}

// Regenerate extracts a fresh profile, stores it and replaces the cached latest profile so
// subsequent generation and edit calls see it immediately.
func (s *styleService) Regenerate(ctx context.Context, texts []string) (StyleProfileView, error) {
	const op = "style.Regenerate"
	profile, hash, err := s.extractor.Extract(ctx, texts)
	if err != nil {
		return StyleProfileView{}, err
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return StyleProfileView{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	row := &documents.StyleProfile{
		CombinedHash: hash,
		SourceCount:  countNonBlank(texts),
		Profile:      datatypes.JSON(raw),
	}
	if err := s.profiles.Upsert(dbctx.Context{Ctx: ctx}, row); err != nil {
		return StyleProfileView{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if err := s.cache.Invalidate(ctx, styleguide.LatestKey); err != nil {
		s.log.Warn("style cache invalidate failed", "error", err)
	}
	if err := s.cache.Put(ctx, styleguide.LatestKey, profile); err != nil {
		s.log.Warn("style cache write failed", "error", err)
	}
	s.log.Info("style profile regenerated", "combined_hash", hash, "sources", row.SourceCount)
	return StyleProfileView{
		Profile:      profile,
		CombinedHash: hash,
		SourceCount:  row.SourceCount,
		Guide:        styleguide.Format(profile),
	}, nil
}

func countNonBlank(texts []string) int {
	n := 0
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			n++
		}
	}
	return n
}
