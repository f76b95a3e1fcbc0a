package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/events"
	"github.com/yungbote/cinebridge-backend/internal/http"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *dbpkg.Service
	server       *http.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	dbService, err := dbpkg.Open(log, cfg.DBConfig())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		_ = clients.Bus.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset, clients, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the optional event audit listener and
// the pool stats collector.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.EventAuditEnable {
		auditLog := a.Log.With("component", "EventAudit")
		if err := events.Listen(ctx, a.Clients.Bus, a.Cfg.EventBusTopic, func(e events.Event) {
			auditEvent(auditLog, e)
		}); err != nil {
			return fmt.Errorf("start event audit: %w", err)
		}
	}
	a.Metrics.StartPoolCollector(ctx, a.Log, a.DB, 15*time.Second)
	return nil
}

func auditEvent(log *logger.Logger, e events.Event) {
	switch e.Kind {
	case events.KindItemRated:
		log.Info("event received",
			"kind", e.Kind.String(),
			"subject_id", e.Rated.SubjectID,
			"item_id", e.Rated.ItemID,
			"rating", e.Rated.Rating,
		)
	default:
		log.Warn("invalid event received", "kind", e.Kind.String(), "bytes", len(e.Raw))
	}
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.server = http.NewServer(a.Router, a.Cfg.Addr())

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		errCh <- a.server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Log.Info("HTTP server shutting down")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// Close releases resources in reverse dependency order. The publisher is
// drained before the broker and database go away.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Publisher != nil {
		if err := a.Services.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
