package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/vorhaben-backend/internal/http/handlers"
	httpMW "github.com/yungbote/vorhaben-backend/internal/http/middleware"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	DocumentHandler *httpH.DocumentHandler
	ChatHandler     *httpH.ChatHandler
	TemplateHandler *httpH.TemplateHandler
	StyleHandler    *httpH.StyleHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/api")
	{
		// Documents
		if cfg.DocumentHandler != nil {
			api.GET("/companies/:company_id/documents/vorhabensbeschreibung", cfg.DocumentHandler.GetOrCreate)
			api.GET("/documents/:id", cfg.DocumentHandler.GetDocument)
			api.PUT("/documents/:id", cfg.DocumentHandler.UpdateDocument)
			api.POST("/documents/:id/confirm-headings", cfg.DocumentHandler.ConfirmHeadings)
			api.POST("/documents/:id/generate", cfg.DocumentHandler.Generate)
		}

		// Chat
		if cfg.ChatHandler != nil {
			api.POST("/documents/:id/chat", cfg.ChatHandler.SendMessage)
			api.POST("/documents/:id/chat/confirm", cfg.ChatHandler.Confirm)
			api.GET("/documents/:id/chat", cfg.ChatHandler.History)
		}

		// Templates
		if cfg.TemplateHandler != nil {
			api.GET("/templates/list", cfg.TemplateHandler.List)
			api.GET("/templates/system/:name", cfg.TemplateHandler.GetSystem)
		}

		// Style profile
		if cfg.StyleHandler != nil {
			api.GET("/style-profile", cfg.StyleHandler.Get)
			api.POST("/style-profile/regenerate", cfg.StyleHandler.Regenerate)
		}
	}

	owned := api.Group("/")
	owned.Use(httpMW.RequireOwner())
	{
		if cfg.TemplateHandler != nil {
			owned.POST("/user-templates", cfg.TemplateHandler.CreateUserTemplate)
			owned.GET("/user-templates", cfg.TemplateHandler.ListUserTemplates)
			owned.GET("/user-templates/:id", cfg.TemplateHandler.GetUserTemplate)
		}
	}

	return r
}
