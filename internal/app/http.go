package app

import (
	apphttp "github.com/yungbote/vorhaben-backend/internal/http"
	httpH "github.com/yungbote/vorhaben-backend/internal/http/handlers"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Document *httpH.DocumentHandler
	Chat     *httpH.ChatHandler
	Template *httpH.TemplateHandler
	Style    *httpH.StyleHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Document: httpH.NewDocumentHandler(services.Document),
		Chat:     httpH.NewChatHandler(services.Chat),
		Template: httpH.NewTemplateHandler(services.Templates),
		Style:    httpH.NewStyleHandler(services.Style),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		DocumentHandler: handlers.Document,
		ChatHandler:     handlers.Chat,
		TemplateHandler: handlers.Template,
		StyleHandler:    handlers.Style,
		HealthHandler:   handlers.Health,
	})
}
