package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cinebridge-backend/internal/events"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/platform/validation"
	"github.com/yungbote/cinebridge-backend/internal/services"
)

type Services struct {
	Tokens    services.TokenValidator
	Resolver  services.LabelResolver
	Engine    services.InteractionEngine
	Catalog   services.CatalogService
	Publisher events.Publisher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	tokens, err := services.NewTokenValidator(log, cfg.JWTSecretKey, cfg.JWTAlgorithm)
	if err != nil {
		return Services{}, fmt.Errorf("init token validator: %w", err)
	}

	v := validation.New()
	publisher := events.NewPublisher(log, clients.Bus, cfg.EventBusTopic, cfg.PublishTimeout)
	resolver := services.NewLabelResolver(db, log, repos.Label, repos.ItemLabel)
	engine := services.NewInteractionEngine(db, log, repos.Interaction, v)
	catalog := services.NewCatalogService(
		db, log,
		repos.Item, repos.Label, repos.ItemLabel, repos.Interaction,
		resolver, engine, publisher, v,
	)

	return Services{
		Tokens:    tokens,
		Resolver:  resolver,
		Engine:    engine,
		Catalog:   catalog,
		Publisher: publisher,
	}, nil
}
