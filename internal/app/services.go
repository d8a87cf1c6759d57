package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/chat"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/editor"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/generation"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/styleguide"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/templates"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/services"
)

type Services struct {
	// Infra
	Registry   *templates.Registry
	StyleCache *styleguide.Cache
	Documents  domainagg.DocumentAggregate

	// Domain
	Context   services.ContextProvider
	Templates services.TemplateService
	Document  services.DocumentService
	Chat      services.ChatService
	Style     services.StyleService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repoSet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	registry, err := templates.NewRegistry(log, cfg.TemplatesDir)
	if err != nil {
		return Services{}, fmt.Errorf("init template registry: %w", err)
	}

	docs := aggregates.NewDocumentAggregate(aggregates.DocumentAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(observability.Current()),
		},
		Documents: repoSet.Documents,
		Headings:  cfg.Headings,
	})

	var store styleguide.Store = styleguide.NewMemoryStore()
	if clients.Redis != nil {
		store = styleguide.NewRedisStore(clients.Redis, cfg.RedisPrefix)
	}
	styleCache := styleguide.NewCache(log, store, services.StyleProfileLoader(repoSet.StyleProfiles), cfg.StyleCacheTTL)
	log.Info("style cache ready", "mode", cfg.StyleCacheMode, "ttl", cfg.StyleCacheTTL.String())

	gen := batch.NewGenerator(log, clients.OpenAI, styleCache, cfg.Batch)
	ed := editor.New(log, clients.OpenAI, styleCache, cfg.Editor)
	extractor := styleguide.NewExtractor(log, clients.OpenAI, cfg.StyleExtractTimeout)

	templateService := services.NewTemplateService(log, registry, repoSet.UserTemplates)
	contextProvider := services.NewContextProvider(log, repoSet.Companies, repoSet.FundingPrograms)
	pipeline := generation.NewPipeline(log, docs, templateService.Resolver(), gen)
	session := chat.NewSession(log, docs, ed, clients.OpenAI, cfg.Chat)

	documentService := services.NewDocumentService(
		log,
		docs,
		repoSet.Documents,
		repoSet.Companies,
		repoSet.FundingPrograms,
		templateService.Resolver(),
		contextProvider,
		pipeline,
	)

	return Services{
		Registry:   registry,
		StyleCache: styleCache,
		Documents:  docs,

		Context:   contextProvider,
		Templates: templateService,
		Document:  documentService,
		Chat:      services.NewChatService(log, docs, session, contextProvider),
		Style:     services.NewStyleService(log, repoSet.StyleProfiles, extractor, styleCache),
	}, nil
}
