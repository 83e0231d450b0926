// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration. Every field maps to one env var.
type Config struct {
	// Server
	Env      string `mapstructure:"APP_ENV"` // development | production
	Port     int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database. An empty DatabaseURL runs the ledger on the in-memory store,
	// which snapshots its tables on every write and suits development only.
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	StatementTimeout time.Duration `mapstructure:"DB_STATEMENT_TIMEOUT"`

	// Redis. An empty RedisURL uses an in-process register lock.
	RedisURL        string        `mapstructure:"REDIS_URL"`
	RegisterLockTTL time.Duration `mapstructure:"REGISTER_LOCK_TTL"`

	// Auth
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	IdempotencyEnabled bool          `mapstructure:"IDEMPOTENCY_ENABLED"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	// Worker
	OutboxPollInterval     time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize        int           `mapstructure:"OUTBOX_BATCH_SIZE"`
	AuditCompressThreshold int           `mapstructure:"AUDIT_COMPRESS_THRESHOLD"`
}

var defaults = map[string]any{
	"APP_ENV":                  "development",
	"APP_PORT":                 8080,
	"LOG_LEVEL":                "info",
	"DATABASE_URL":             "",
	"DB_MAX_CONNS":             10,
	"DB_MIN_CONNS":             2,
	"DB_STATEMENT_TIMEOUT":     "30s",
	"REDIS_URL":                "",
	"REGISTER_LOCK_TTL":        "10s",
	"JWT_SECRET":               "change-me",
	"JWT_ISSUER":               "restoledger",
	"JWT_TTL":                  "12h",
	"IDEMPOTENCY_ENABLED":      false,
	"IDEMPOTENCY_TTL":          "10m",
	"OUTBOX_POLL_INTERVAL":     "2s",
	"OUTBOX_BATCH_SIZE":        100,
	"AUDIT_COMPRESS_THRESHOLD": 10 * 1024,
}

// Load reads configuration from environment variables and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	// Missing .env is fine.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether a database is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// UsesRedis reports whether the register lock is distributed.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}
