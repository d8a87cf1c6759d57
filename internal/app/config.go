package app

import (
	"strings"
	"time"

	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/chat"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/editor"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
	"github.com/yungbote/vorhaben-backend/internal/utils"
)

const (
	StyleCacheMemory = "memory"
	StyleCacheRedis  = "redis"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string
	CORSOrigins []string

	TemplatesDir string

	StyleCacheMode      string
	StyleCacheTTL       time.Duration
	StyleExtractTimeout time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisPrefix         string

	Headings headings.Policy

	OpenAI openai.Config
	Batch  batch.Config
	Editor editor.Config
	Chat   chat.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "vorhaben-backend", log),
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
		CORSOrigins: splitList(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),

		TemplatesDir: strings.TrimSpace(utils.GetEnv("TEMPLATES_DIR", "", log)),

		StyleCacheMode:      strings.ToLower(strings.TrimSpace(utils.GetEnv("STYLE_CACHE_MODE", StyleCacheMemory, log))),
		StyleCacheTTL:       time.Duration(utils.GetEnvAsInt("STYLE_CACHE_TTL_SECONDS", 3600, log)) * time.Second,
		StyleExtractTimeout: envutil.Seconds("STYLE_EXTRACT_TIMEOUT_SECONDS", 120*time.Second),
		RedisAddr:           strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log)),
		RedisPassword:       utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisPrefix:         utils.GetEnv("STYLE_CACHE_REDIS_PREFIX", "vorhaben:style:", log),

		Headings: headings.Policy{
			BlockRemoval: envutil.Bool("HEADINGS_LOCK_BLOCK_REMOVAL", false),
		},

		OpenAI: openai.ConfigFromEnv(),
		Batch:  batch.ConfigFromEnv(),
		Editor: editor.ConfigFromEnv(),
		Chat:   chat.ConfigFromEnv(),
	}
	if cfg.StyleCacheMode != StyleCacheRedis {
		cfg.StyleCacheMode = StyleCacheMemory
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
