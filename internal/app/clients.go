package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI openai.Client
	Redis  redis.UniversalClient
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	llm, err := openai.NewClient(log, cfg.OpenAI)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	var rdb redis.UniversalClient
	if cfg.StyleCacheMode == StyleCacheRedis {
		if cfg.RedisAddr == "" {
			return Clients{}, fmt.Errorf("STYLE_CACHE_MODE=redis requires REDIS_ADDR")
		}
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("ping redis: %w", err)
		}
		log.Info("redis connected", "addr", cfg.RedisAddr)
	}

	return Clients{OpenAI: llm, Redis: rdb}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
