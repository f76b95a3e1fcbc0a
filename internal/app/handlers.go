package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/cinebridge-backend/internal/http/handlers"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Item   *httpH.ItemHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Health: httpH.NewHealthHandler(pinger),
		Item:   httpH.NewItemHandler(services.Catalog),
	}
}
