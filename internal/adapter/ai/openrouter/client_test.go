package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

func newTestClient(url string) *Client {
	return &Client{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.7,
		TopP:        1.0,
		hc:          &http.Client{Timeout: 2 * time.Second},
	}
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hello, Sarah!"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out, err := c.Complete(context.Background(), "say hi", 128)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Sarah!", out)

	reqs, fails := c.Usage()
	assert.Equal(t, int64(1), reqs)
	assert.Zero(t, fails)
}

func TestComplete_StatusMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, domain.ErrUpstreamRateLimit},
		{http.StatusUnauthorized, domain.ErrProviderAuth},
		{http.StatusForbidden, domain.ErrProviderAuth},
		{http.StatusPaymentRequired, domain.ErrProviderQuota},
		{http.StatusInternalServerError, domain.ErrUpstreamServer},
		{http.StatusBadGateway, domain.ErrUpstreamServer},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := newTestClient(srv.URL)
		_, err := c.Complete(context.Background(), "hi", 10)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		srv.Close()
	}
}

func TestComplete_MissingKey(t *testing.T) {
	t.Parallel()
	c := newTestClient("http://localhost:0")
	c.APIKey = ""
	_, err := c.Complete(context.Background(), "hi", 10)
	assert.ErrorIs(t, err, domain.ErrProviderAuth)
}

func TestComplete_EmptyChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Complete(context.Background(), "hi", 10)
	assert.ErrorIs(t, err, domain.ErrUpstreamServer)
}
