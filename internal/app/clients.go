package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/cinebridge-backend/internal/clients/capability"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
	"github.com/yungbote/cinebridge-backend/internal/realtime/bus"
)

type Clients struct {
	Bus          bus.Bus
	Capabilities capability.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Broker
	var b bus.Bus
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rb, err := bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		b = rb
	} else {
		log.Warn("REDIS_ADDR not set; events stay in-process")
		b = bus.NewMemoryBus()
	}

	// Capability authority
	caps, err := capability.New(log, capability.Config{
		BaseURL: cfg.AuthServiceAddress,
		Timeout: cfg.AuthCheckTimeout,
	})
	if err != nil {
		_ = b.Close()
		return Clients{}, fmt.Errorf("init capability client: %w", err)
	}

	return Clients{Bus: b, Capabilities: caps}, nil
}
