package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-recruit-chat/internal/usecase"
)

// ExpiredSessionSweeper periodically evicts sessions whose expiry has passed.
type ExpiredSessionSweeper struct {
	sessions *usecase.SessionService
	interval time.Duration
}

// NewExpiredSessionSweeper builds a sweeper. Returns nil if sessions is nil.
func NewExpiredSessionSweeper(sessions *usecase.SessionService, interval time.Duration) *ExpiredSessionSweeper {
	if sessions == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpiredSessionSweeper{sessions: sessions, interval: interval}
}

// Run sweeps immediately, then on every tick until the context is done.
func (s *ExpiredSessionSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("expired session sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *ExpiredSessionSweeper) sweepOnce(ctx context.Context) {
	tracer := otel.Tracer("sessions.sweeper")
	ctx, span := tracer.Start(ctx, "ExpiredSessionSweeper.sweepOnce")
	defer span.End()

	n, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		slog.Warn("expired session sweep failed", slog.Any("error", err))
		return
	}
	span.SetAttributes(attribute.Int("sessions.removed", n))
}
