package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:          "debug",
		Format:         LogFormatJSON,
		Output:         &buf,
		ServiceName:    "consulta",
		ServiceVersion: "test",
	})

	account := uuid.New()
	ctx := NewRequestContext(context.Background(), "corr-1")
	ctx = WithAccountID(ctx, account)
	logger.DebugContext(ctx, "hello", "k", "v")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "consulta", record["service"])
	assert.Equal(t, "test", record["version"])
	assert.Equal(t, "corr-1", record[CorrelationIDKey])
	assert.NotEmpty(t, record[RequestIDKey])
	assert.Equal(t, account.String(), record[AccountIDKey])
	assert.Equal(t, "v", record["k"])
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "warn", Output: &buf})

	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.With("component", "x").Warn("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=x")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, AccountIDFromContext(ctx))

	ctx = WithCorrelationID(ctx, "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
}

func TestHealthRegistry(t *testing.T) {
	reg := NewHealthRegistry(0)
	reg.Register("db", PingChecker(func(context.Context) error { return nil }))

	health := reg.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, health.Status)
	assert.Equal(t, HealthStatusHealthy, health.Components["db"].Status)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	reg.Register("broker", PingChecker(func(context.Context) error { return errors.New("connection refused") }))
	rec = httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body OverallHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthStatusUnhealthy, body.Status)
	assert.Equal(t, "connection refused", body.Components["broker"].Message)
}
