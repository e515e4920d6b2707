package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
)

func TestSetupLogger_DevAndProd(t *testing.T) {
	lg := SetupLogger(config.Config{AppEnv: "dev", OTELServiceName: "svc"})
	assert.NotNil(t, lg)
	assert.True(t, lg.Enabled(context.Background(), slog.LevelDebug))

	lg2 := SetupLogger(config.Config{AppEnv: "prod", OTELServiceName: "svc"})
	assert.NotNil(t, lg2)
	assert.False(t, lg2.Enabled(context.Background(), slog.LevelDebug))
}

func TestLoggerContext_RoundTrip(t *testing.T) {
	t.Parallel()
	base := slog.Default().With(slog.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), base)
	assert.Same(t, base, LoggerFromContext(ctx))
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background()))
}

func TestRequestIDContext_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
