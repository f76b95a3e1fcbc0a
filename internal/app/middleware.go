package app

import (
	httpMW "github.com/yungbote/cinebridge-backend/internal/http/middleware"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, services Services, clients Clients, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Tokens, clients.Capabilities, metrics),
	}
}
