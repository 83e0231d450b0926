package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(t.TempDir())
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.RegisterLockTTL)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 10240, cfg.AuditCompressThreshold)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REGISTER_LOCK_TTL", "3s")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("IDEMPOTENCY_ENABLED", "true")

	cfg, err := load(newTestViper(t))
	require.NoError(t, err)

	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, 3*time.Second, cfg.RegisterLockTTL)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IdempotencyEnabled)
}
