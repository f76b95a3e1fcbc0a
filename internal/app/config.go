package app

import (
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/observability"
	"github.com/yungbote/cinebridge-backend/internal/platform/envutil"
)

type Config struct {
	LogMode string `env:"LOG_MODE" envDefault:"development"`
	Port    int    `env:"PORT" envDefault:"8080"`

	JWTSecretKey string `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTAlgorithm string `env:"JWT_ALGORITHM" envDefault:"HS256"`

	DatabaseDriver   string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD"`
	PostgresName     string        `env:"POSTGRES_NAME"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath       string        `env:"SQLITE_PATH" envDefault:"cinebridge.db"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnLifetime   time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	EventBusTopic    string        `env:"EVENT_BUS_TOPIC" envDefault:"movies"`
	PublishTimeout   time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`
	EventAuditEnable bool          `env:"EVENT_AUDIT_ENABLED" envDefault:"false"`

	AuthServiceAddress string        `env:"AUTH_SERVICE_ADDRESS,required,notEmpty"`
	AuthCheckTimeout   time.Duration `env:"AUTH_CHECK_TIMEOUT" envDefault:"2s"`

	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"false"`

	Otel observability.OtelConfig
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envutil.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	switch c.DatabaseDriver {
	case dbpkg.DriverPostgres:
		if c.PostgresUser == "" || c.PostgresName == "" {
			return fmt.Errorf("postgres driver requires POSTGRES_USER and POSTGRES_NAME")
		}
	case dbpkg.DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlite driver requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if strings.TrimSpace(c.EventBusTopic) == "" {
		return fmt.Errorf("EVENT_BUS_TOPIC must not be empty")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) DBConfig() dbpkg.Config {
	return dbpkg.Config{
		Driver:           c.DatabaseDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		PostgresSSLMode:  c.PostgresSSLMode,
		SQLitePath:       c.SQLitePath,
		MaxOpenConns:     c.DBMaxOpenConns,
		MaxIdleConns:     c.DBMaxIdleConns,
		ConnMaxLifetime:  c.DBConnLifetime,
	}
}
