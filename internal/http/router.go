package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/cinebridge-backend/internal/clients/capability"
	httpH "github.com/yungbote/cinebridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cinebridge-backend/internal/http/middleware"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	ItemHandler   *httpH.ItemHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readycheck", cfg.HealthHandler.ReadyCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Items (public)
		if cfg.ItemHandler != nil {
			api.GET("/items/:id", cfg.ItemHandler.GetItem)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.ItemHandler != nil && cfg.AuthMiddleware != nil {
			am := cfg.AuthMiddleware
			h := cfg.ItemHandler

			protected.POST("/items/:id/rate", am.RequireCapability(capability.ActionRate, true), h.Rate)
			protected.POST("/items/:id/comment", am.RequireCapability(capability.ActionComment, true), h.Comment)
			protected.DELETE("/items/:id/comment", am.RequireCapability(capability.ActionComment, true), h.DeleteComment)
			protected.POST("/items/:id/tag", am.RequireCapability(capability.ActionTag, true), h.Tag)

			// Admin
			protected.POST("/items", am.RequireCapability(capability.ActionAdmin, false), h.Upload)
			protected.DELETE("/items/:id", am.RequireCapability(capability.ActionAdmin, false), h.Delete)
		}
	}

	return r
}
