package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinebridge-backend/internal/http"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		AuthMiddleware: middleware.Auth,
		ItemHandler:    handlers.Item,
		HealthHandler:  handlers.Health,
	})
}
