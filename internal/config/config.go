package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	BackendURL     string        `env:"BACKEND_URL,required" validate:"required,url"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	CatalogSource string        `env:"CATALOG_SOURCE" envDefault:"remote" validate:"oneof=remote file"`
	MenuFile      string        `env:"MENU_FILE" validate:"required_if=CatalogSource file"`
	CatalogTTL    time.Duration `env:"CATALOG_TTL" envDefault:"5m" validate:"gt=0"`

	NATSURL string `env:"NATS_URL" validate:"omitempty,url"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionMemoryLimit    int    `env:"SESSION_MEMORY_LIMIT" envDefault:"10000" validate:"min=1"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	DraftStore  string `env:"DRAFT_STORE" envDefault:"memory" validate:"oneof=memory postgres"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=DraftStore postgres"`

	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET,required" validate:"required,min=32"`

	TrackingTimeout   time.Duration `env:"TRACKING_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	MutationRateLimit int           `env:"MUTATION_RATE_LIMIT" envDefault:"120" validate:"gt=0"`

	SentryDSN   string `env:"SENTRY_DSN" validate:"omitempty,url"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string `env:"BASE_URL" validate:"omitempty,url"`
	// TrustedOrigins lists extra origins allowed to post, such as the host
	// POS tablets load the app from.
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:"," validate:"dive,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	backend, err := url.Parse(strings.TrimSpace(c.BackendURL))
	if err != nil || backend.Hostname() == "" {
		return fmt.Errorf("BACKEND_URL must be a valid absolute URL")
	}
	if !isLocalHost(backend.Hostname()) && !strings.EqualFold(backend.Scheme, "https") {
		return fmt.Errorf("BACKEND_URL must use https outside local development")
	}

	if c.NATSURL != "" {
		parsed, err := url.Parse(c.NATSURL)
		if err != nil || !strings.EqualFold(parsed.Scheme, "nats") && !strings.EqualFold(parsed.Scheme, "tls") {
			return fmt.Errorf("NATS_URL must use the nats:// or tls:// scheme")
		}
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// RealtimeEnabled reports whether a NATS connection should be opened.
func (c *Config) RealtimeEnabled() bool {
	return strings.TrimSpace(c.NATSURL) != ""
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
