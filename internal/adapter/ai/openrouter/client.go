// Package openrouter implements the completion client against an
// OpenAI-compatible chat completions API (OpenRouter by default).
package openrouter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// Client calls the provider's chat completions endpoint. Generation settings
// (model, temperature, top-p) live on the struct so tests and callers can
// adjust them instead of relying on hardcoded values.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64

	hc *http.Client

	// usage counters for client-side throttling decisions
	requests   atomic.Int64
	failures   atomic.Int64
	lastCallNS atomic.Int64
}

// New constructs a Client from configuration.
func New(cfg config.Config) *Client {
	return &Client{
		BaseURL:     cfg.ProviderBaseURL,
		APIKey:      cfg.ProviderAPIKey,
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
		TopP:        cfg.ChatTopP,
		hc:          &http.Client{Timeout: cfg.ChatTimeout},
	}
}

// Usage returns the request/failure counters accumulated by this client.
func (c *Client) Usage() (requests, failures int64) {
	return c.requests.Load(), c.failures.Load()
}

// Complete sends the rendered prompt and returns the generated text. Errors
// are mapped onto the domain taxonomy so the gateway can decide retryability.
func (c *Client) Complete(ctx domain.Context, prompt string, maxTokens int) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("op=ai.complete: %w: PROVIDER_API_KEY missing", domain.ErrProviderAuth)
	}

	body := map[string]any{
		"model":       c.Model,
		"temperature": c.Temperature,
		"top_p":       c.TopP,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(body)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("op=ai.complete: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.requests.Add(1)
	c.lastCallNS.Store(time.Now().UnixNano())
	resp, err := c.hc.Do(req)
	observability.AIRequestDuration.WithLabelValues("openrouter").Observe(time.Since(start).Seconds())
	if err != nil {
		c.failures.Add(1)
		observability.AIRequestsTotal.WithLabelValues("openrouter", "network_error").Inc()
		return "", fmt.Errorf("op=ai.complete: %w: %v", domain.ErrUpstreamTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.failures.Add(1)
		return "", fmt.Errorf("op=ai.complete: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.failures.Add(1)
		return "", c.mapStatus(resp.StatusCode, raw)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.failures.Add(1)
		return "", fmt.Errorf("op=ai.complete: decode: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		c.failures.Add(1)
		return "", fmt.Errorf("op=ai.complete: %w: empty completion", domain.ErrUpstreamServer)
	}
	observability.AIRequestsTotal.WithLabelValues("openrouter", "ok").Inc()
	return out.Choices[0].Message.Content, nil
}

// mapStatus translates provider HTTP statuses into domain sentinels.
func (c *Client) mapStatus(status int, raw []byte) error {
	snippet := string(raw)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	slog.Warn("ai provider error",
		slog.String("provider", "openrouter"),
		slog.Int("status", status),
		slog.String("body", snippet))

	switch {
	case status == http.StatusTooManyRequests:
		observability.AIRequestsTotal.WithLabelValues("openrouter", "rate_limited").Inc()
		return fmt.Errorf("op=ai.complete: %w: status %d", domain.ErrUpstreamRateLimit, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		observability.AIRequestsTotal.WithLabelValues("openrouter", "auth_error").Inc()
		return fmt.Errorf("op=ai.complete: %w: status %d", domain.ErrProviderAuth, status)
	case status == http.StatusPaymentRequired:
		observability.AIRequestsTotal.WithLabelValues("openrouter", "quota_exhausted").Inc()
		return fmt.Errorf("op=ai.complete: %w: status %d", domain.ErrProviderQuota, status)
	case status >= 500:
		observability.AIRequestsTotal.WithLabelValues("openrouter", "server_error").Inc()
		return fmt.Errorf("op=ai.complete: %w: status %d", domain.ErrUpstreamServer, status)
	default:
		observability.AIRequestsTotal.WithLabelValues("openrouter", "error").Inc()
		return fmt.Errorf("op=ai.complete: %w: status %d", domain.ErrInternal, status)
	}
}
