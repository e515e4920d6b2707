// Package ai wraps the completion client with retry, backoff, and fallback
// behavior. The gateway is the only component allowed to call the provider.
package ai

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/prompt"
)

// generatedConfidence is attached to replies that came from the provider.
const generatedConfidence = 0.9

// Gateway retries transient provider failures with exponential backoff and
// degrades to a stage-appropriate canned reply when retries are exhausted.
// Non-retryable provider errors (bad credentials, exhausted quota) propagate
// immediately.
type Gateway struct {
	client       domain.CompletionClient
	maxTokens    int
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// NewGateway constructs a Gateway around the given client.
func NewGateway(client domain.CompletionClient, cfg config.Config) *Gateway {
	attempts, initial, maxDelay, mult := cfg.GetRetryConfig()
	if attempts < 1 {
		attempts = 1
	}
	return &Gateway{
		client:       client,
		maxTokens:    cfg.ChatMaxTokens,
		maxAttempts:  attempts,
		initialDelay: initial,
		maxDelay:     maxDelay,
		multiplier:   mult,
	}
}

// retryable reports whether the error class is worth another attempt.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrUpstreamRateLimit) ||
		errors.Is(err, domain.ErrUpstreamServer) ||
		errors.Is(err, domain.ErrUpstreamTimeout)
}

// Generate produces the assistant reply for the rendered prompt. The returned
// error is non-nil only for non-retryable provider failures; transient
// failures degrade to the stage fallback with reduced confidence.
func (g *Gateway) Generate(ctx domain.Context, promptText string, st domain.Stage) (domain.Reply, error) {
	tracer := otel.Tracer("ai.gateway")
	ctx, span := tracer.Start(ctx, "gateway.Generate")
	defer span.End()

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = g.initialDelay
	expo.MaxInterval = g.maxDelay
	expo.Multiplier = g.multiplier
	expo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var text string
	attempts := 0
	op := func() error {
		attempts++
		out, err := g.client.Complete(ctx, promptText, g.maxTokens)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(expo, uint64(g.maxAttempts-1)), ctx))
	if err == nil {
		return domain.Reply{Text: text, Confidence: generatedConfidence}, nil
	}

	if errors.Is(err, domain.ErrProviderAuth) || errors.Is(err, domain.ErrProviderQuota) {
		return domain.Reply{}, fmt.Errorf("op=gateway.generate: %w", err)
	}

	observability.LoggerFromContext(ctx).Warn("model call failed, serving fallback",
		slog.String("stage", string(st)),
		slog.Int("attempts", attempts),
		slog.Any("error", err))
	observability.AIFallbacksTotal.WithLabelValues(string(st)).Inc()
	return domain.Reply{
		Text:       prompt.Fallback(st),
		Confidence: prompt.FallbackConfidence,
		Fallback:   true,
	}, nil
}
