package styleguide

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

// LatestKey is the cache key of the most recently extracted profile.
const LatestKey = "latest"

// Loader fetches a profile from the source of truth. A nil profile means none exists.
type Loader func(ctx context.Context, key string) (*Profile, error)

// Cache holds style profiles for reuse across generation and edit calls. It is built
// once by the caller and passed to the components that need it.
type Cache struct {
	log    *logger.Logger
	store  Store
	load   Loader
	ttl    time.Duration
	flight singleflight.Group
}

func NewCache(log *logger.Logger, store Store, load Loader, ttl time.Duration) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{log: log.With("service", "StyleCache"), store: store, load: load, ttl: ttl}
}

// Get returns the cached profile for key, loading it once on a miss. Store failures
// degrade to a direct load.
func (c *Cache) Get(ctx context.Context, key string) (*Profile, error) {
	if key == "" {
		key = LatestKey
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		observability.Current().IncStyleCache("error")
		c.log.Warn("style cache read failed", "key", key, "error", err)
	} else if ok {
		if p, perr := Parse(raw); perr == nil {
			observability.Current().IncStyleCache("hit")
			return p, nil
		}
	}
	observability.Current().IncStyleCache("miss")

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if c.load == nil {
			return (*Profile)(nil), nil
		}
		p, err := c.load(ctx, key)
		if err != nil || p == nil {
			return p, err
		}
		if b, merr := json.Marshal(p); merr == nil {
			if serr := c.store.Set(ctx, key, b, c.ttl); serr != nil {
				c.log.Warn("style cache write failed", "key", key, "error", serr)
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Profile), nil
}

// Put stores p under key, replacing any cached value.
func (c *Cache) Put(ctx context.Context, key string, p *Profile) error {
	if key == "" {
		key = LatestKey
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, b, c.ttl)
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		key = LatestKey
	}
	c.flight.Forget(key)
	return c.store.Delete(ctx, key)
}

// Guide returns the formatted guide for the latest profile, falling back to
// DefaultGuide when none exists or loading fails.
func (c *Cache) Guide(ctx context.Context) string {
	if c == nil {
		return DefaultGuide
	}
	p, err := c.Get(ctx, LatestKey)
	if err != nil {
		c.log.Warn("style profile unavailable, using default guide", "error", err)
		return DefaultGuide
	}
	return Format(p)
}
