package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("KAFKA_BROKERS", "localhost:19092,localhost:29092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"localhost:19092", "localhost:29092"}, cfg.KafkaBrokers)
}

func TestGetRetryConfig_TestEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := Load()
	require.NoError(t, err)
	attempts, initial, maxDelay, mult := cfg.GetRetryConfig()
	assert.Equal(t, 3, attempts)
	assert.Equal(t, time.Millisecond, initial)
	assert.Equal(t, 10*time.Millisecond, maxDelay)
	assert.Equal(t, 2.0, mult)
}
