package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpserver "github.com/fairyhunter13/ai-recruit-chat/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(30 * time.Second))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limit mutating endpoints per client IP.
	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		wr.Post("/v1/sessions", srv.CreateSessionHandler())
		wr.Delete("/v1/sessions/{id}", srv.DeleteSessionHandler())
		wr.Post("/v1/sessions/{id}/messages", srv.PostMessageHandler())
		wr.Patch("/v1/sessions/{id}/profile", srv.UpdateProfileHandler())
		wr.Post("/v1/sessions/{id}/extend", srv.ExtendSessionHandler())
		wr.Post("/v1/sessions/{id}/complete", srv.CompleteSessionHandler())
		wr.Post("/v1/sessions/{id}/reset", srv.ResetSessionHandler())
		wr.Post("/v1/admin/sessions/cleanup", srv.CleanupSessionsHandler())
	})

	// Read-only endpoints
	r.Get("/v1/sessions/{id}", srv.GetSessionHandler())
	r.Get("/v1/jobs", srv.ListJobsHandler())
	r.Get("/v1/jobs/{id}", srv.GetJobHandler())

	// Health and metrics
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return otelhttp.NewHandler(httpserver.SecurityHeaders(r), "recruit-chat")
}
