package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "production"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type ImportOptions struct {
	MaxRows      int   `env:"IMPORT_MAX_ROWS" envDefault:"200"`
	MaxBytes     int64 `env:"IMPORT_MAX_BYTES" envDefault:"1048576"`
	RatePerMin   int   `env:"IMPORT_RATE_PER_MIN" envDefault:"10"`
	NotifyByMail bool  `env:"IMPORT_NOTIFY_BY_MAIL" envDefault:"true"`
}

type SessionOptions struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	// DemoUsers is "id:email:password" entries separated by ";".
	DemoUsers string `env:"DEMO_USERS" envDefault:"demo-user-1:demo1@example.com:demo123;demo-user-2:demo2@example.com:demo123"`
}

type MailOptions struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"leads@example.com"`
}

type KommoOptions struct {
	BaseURL  string `env:"KOMMO_BASE_URL"`
	APIToken string `env:"KOMMO_API_TOKEN"`
}

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RabbitMQURL    string        `env:"RABBITMQ_URL"`
	StatsInterval  time.Duration `env:"STATS_INTERVAL" envDefault:"1m"`

	Import  ImportOptions
	Session SessionOptions
	Mail    MailOptions
	Kommo   KommoOptions
}

// Load reads .env files when present, then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, c.StoreDriver))
	}

	if c.Session.Secret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("SESSION_SECRET is required in production"))
		} else {
			c.Session.Secret = "dev-only-session-secret"
		}
	}
	if c.Import.MaxRows <= 0 {
		errs = append(errs, errors.New("IMPORT_MAX_ROWS must be positive"))
	}
	if c.Import.MaxBytes <= 0 {
		errs = append(errs, errors.New("IMPORT_MAX_BYTES must be positive"))
	}
	if c.Import.RatePerMin <= 0 {
		errs = append(errs, errors.New("IMPORT_RATE_PER_MIN must be positive"))
	}
	if c.StatsInterval <= 0 {
		errs = append(errs, errors.New("STATS_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, Production)
}

func (c *Config) MailEnabled() bool  { return c.Mail.Host != "" }
func (c *Config) KommoEnabled() bool { return c.Kommo.BaseURL != "" && c.Kommo.APIToken != "" }
func (c *Config) QueueEnabled() bool { return c.RabbitMQURL != "" }
