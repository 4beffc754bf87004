package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"REDIS_URL", "RABBITMQ_URL",
	"JWT_SECRET", "SESSION_TTL", "SESSION_PATH",
	"PAYMENT_GATEWAY", "PAYMENT_FAILURE_RATE", "PAYMENT_DELAY",
	"STRIPE_API_KEY", "STRIPE_CURRENCY",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_STATS_INTERVAL", "OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL",
	"OUTBOX_PROCESSOR_ENABLED", "WORKER_HEALTH_ADDR",
	"MCP_ADDR", "MCP_AUTH_TOKEN", "BCRYPT_COST",
}

// clearEnv unsets every key Load reads and restores nothing; t.Setenv
// handles restoration for keys a test sets.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.True(t, cfg.LocalMode)
	assert.True(t, cfg.IsSQLite())
	assert.Contains(t, cfg.SQLitePath, ".consulta")
	assert.Empty(t, cfg.RedisURL)

	assert.Equal(t, "consulta-dev-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)

	assert.Equal(t, "simulated", cfg.PaymentGateway)
	assert.Equal(t, 0.1, cfg.PaymentFailureRate)
	assert.Equal(t, 3*time.Second, cfg.PaymentDelay)
	assert.Equal(t, "eur", cfg.StripeCurrency)

	assert.Equal(t, 100*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 14, cfg.OutboxRetentionDays)
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/consulta")
	t.Setenv("PAYMENT_GATEWAY", "Stripe")
	t.Setenv("PAYMENT_FAILURE_RATE", "0.5")
	t.Setenv("PAYMENT_DELAY", "10ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "7")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.LocalMode)
	assert.True(t, cfg.IsPostgres())
	assert.Empty(t, cfg.JWTSecret, "no dev secret outside development")
	assert.Equal(t, "stripe", cfg.PaymentGateway)
	assert.Equal(t, 0.5, cfg.PaymentFailureRate)
	assert.Equal(t, 10*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, 7, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_ExplicitSQLiteWinsOverURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/consulta")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.LocalMode)
	assert.True(t, cfg.IsSQLite())
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("CONSULTA_TEST_INT", "abc")
	t.Setenv("CONSULTA_TEST_FLOAT", "x")
	t.Setenv("CONSULTA_TEST_DURATION", "soon")
	t.Setenv("CONSULTA_TEST_BOOL", "maybe")

	assert.Equal(t, 3, getIntEnv("CONSULTA_TEST_INT", 3))
	assert.Equal(t, 0.25, getFloatEnv("CONSULTA_TEST_FLOAT", 0.25))
	assert.Equal(t, time.Minute, getDurationEnv("CONSULTA_TEST_DURATION", time.Minute))
	assert.True(t, getBoolEnv("CONSULTA_TEST_BOOL", true))
	assert.Equal(t, "d", getEnv("CONSULTA_TEST_MISSING", "d"))
}
