package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// StoreURL and StoreKey are the two connection parameters of the hosted
	// database. Both are optional here; missing values put the service into
	// setup-required mode instead of failing startup.
	StoreURL      string        `envconfig:"STORE_URL"`
	StoreKey      string        `envconfig:"STORE_KEY"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	StoreMaxConns int32         `envconfig:"STORE_MAX_CONNS" default:"10"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	LedgerAtomicWrites   bool `envconfig:"LEDGER_ATOMIC_WRITES" default:"true"`
	LedgerDecrementStock bool `envconfig:"LEDGER_DECREMENT_STOCK" default:"true"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables. Values found in
// .env.local and .env are loaded first without overriding the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.StoreURL = strings.TrimSpace(cfg.StoreURL)
	cfg.StoreKey = strings.TrimSpace(cfg.StoreKey)
	return &cfg, nil
}

// StoreError reports which store parameters are missing, or nil when both are set.
func (c *Config) StoreError() error {
	var missing []string
	if c == nil || c.StoreURL == "" {
		missing = append(missing, "STORE_URL")
	}
	if c == nil || c.StoreKey == "" {
		missing = append(missing, "STORE_KEY")
	}
	if len(missing) > 0 {
		return &shared.NotConfiguredError{Missing: missing}
	}
	return nil
}

// InTestMode reports whether binaries should skip runtime side effects.
func InTestMode() bool {
	return os.Getenv("PANADERIA_TEST_MODE") == "1"
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
