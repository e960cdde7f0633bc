package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Delete ownership policies accepted by HABIT_DELETE_OWNERSHIP.
const (
	OwnershipEnforce = "enforce"
	OwnershipLegacy  = "legacy"
)

const devJWTSecret = "lockedin-dev-secret-change-me"

// Config holds the application configuration.
type Config struct {
	ServerPort   int    `env:"PORT,default=8080"`
	DatabasePath string `env:"DATABASE_PATH,default=./data/lockedin.db"`
	AppEnv       string `env:"APP_ENV,default=development"`

	JWTSecret string        `env:"JWT_SECRET,default=lockedin-dev-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	// Comma separated list of origins.
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogPretty bool   `env:"LOG_PRETTY,default=true"`
	LogFile   string `env:"LOG_FILE"`

	// IANA zone used to decide which calendar day "today" is.
	Timezone string `env:"APP_TIMEZONE,default=UTC"`

	DayCloseGuard        bool   `env:"DAY_CLOSE_GUARD,default=false"`
	HabitDeleteOwnership string `env:"HABIT_DELETE_OWNERSHIP,default=enforce"`
	SeedDefaultHabits    bool   `env:"SEED_DEFAULT_HABITS,default=true"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST,default=10"`

	MaintenanceSchedule     string `env:"MAINTENANCE_SCHEDULE,default=0 3 * * *"`
	CompletionRetentionDays int    `env:"COMPLETION_RETENTION_DAYS,default=30"`
}

// Load loads configuration from an optional .env file and the environment,
// fills in defaults and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that the rest of the application relies on.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.ServerPort)
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL %s", c.TokenTTL)
	}
	switch c.HabitDeleteOwnership {
	case OwnershipEnforce, OwnershipLegacy:
	default:
		return fmt.Errorf("invalid HABIT_DELETE_OWNERSHIP %q (want %q or %q)", c.HabitDeleteOwnership, OwnershipEnforce, OwnershipLegacy)
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	if _, err := cron.ParseStandard(c.MaintenanceSchedule); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_SCHEDULE: %w", err)
	}
	if c.CompletionRetentionDays < 1 {
		return fmt.Errorf("invalid COMPLETION_RETENTION_DAYS %d", c.CompletionRetentionDays)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Origins splits CORS_ALLOWED_ORIGINS into a list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
