// Package config loads server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "PLAYBOOK_"

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config errors
var (
	ErrMissingCSRFKey       = errors.New("PLAYBOOK_CSRF_KEY must be set in production")
	ErrMissingSessionSecret = errors.New("PLAYBOOK_SESSION_SECRET must be set in production")
	ErrInvalidDriver        = errors.New("PLAYBOOK_DB_DRIVER must be sqlite or postgres")
	ErrInvalidMinPoints     = errors.New("PLAYBOOK_FRICTION_MIN_POINTS must be between 1 and 3")
)

// Config holds every tunable of the activation.
type Config struct {
	Env  string `env:"ENV"  envDefault:"development"`
	Addr string `env:"ADDR" envDefault:":8080"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN"    envDefault:"playbook.db"`

	CSRFKey       string        `env:"CSRF_KEY"`
	SessionSecret string        `env:"SESSION_SECRET"`
	GrantTTL      time.Duration `env:"GRANT_TTL" envDefault:"5m"`

	ResendKey string `env:"RESEND_KEY"`
	MailFrom  string `env:"MAIL_FROM" envDefault:"onboarding@resend.dev"`

	AllowedEmails  []string `env:"ALLOWED_EMAILS"  envSeparator:"," envDefault:"philip@lightmilemedia.com"`
	AllowedDomains []string `env:"ALLOWED_DOMAINS" envSeparator:"," envDefault:"evolutionofsmooth.com"`

	FrictionMinPoints int `env:"FRICTION_MIN_POINTS" envDefault:"1"`
	TotalSeats        int `env:"TOTAL_SEATS"         envDefault:"500"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	SlowQueryMS        int     `env:"SLOW_QUERY_MS"         envDefault:"100"`
	SlowRequestMS      int     `env:"SLOW_REQUEST_MS"       envDefault:"500"`
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`

	OutboxInterval time.Duration `env:"OUTBOX_INTERVAL" envDefault:"1m"`
}

// Load reads an optional .env file, then parses the environment.
// PRE: none
// POST: Returns a validated Config or an error naming the bad variable
func Load(dotenvFiles ...string) (Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load(dotenvFiles...)
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return ErrInvalidDriver
	}
	if c.FrictionMinPoints < 1 || c.FrictionMinPoints > 3 {
		return ErrInvalidMinPoints
	}
	if c.IsProduction() {
		if c.CSRFKey == "" {
			return ErrMissingCSRFKey
		}
		if c.SessionSecret == "" {
			return ErrMissingSessionSecret
		}
	}
	return nil
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// SlowQueryThreshold is SlowQueryMS as a duration.
func (c Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequestThreshold is SlowRequestMS as a duration.
func (c Config) SlowRequestThreshold() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}
