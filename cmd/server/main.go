// Command server starts the recruitment chat HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	ai "github.com/fairyhunter13/ai-recruit-chat/internal/adapter/ai"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/ai/openrouter"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/ai/stub"
	httpserver "github.com/fairyhunter13/ai-recruit-chat/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/jobs"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/observability"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ai-recruit-chat/internal/adapter/repo/postgres"
	redisstore "github.com/fairyhunter13/ai-recruit-chat/internal/adapter/repo/redis"
	"github.com/fairyhunter13/ai-recruit-chat/internal/app"
	"github.com/fairyhunter13/ai-recruit-chat/internal/config"
	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
	"github.com/fairyhunter13/ai-recruit-chat/internal/prompt"
	"github.com/fairyhunter13/ai-recruit-chat/internal/usecase"
)

// redisPinger adapts the redis client to the readiness Pinger.
type redisPinger struct{ rdb *goredis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Session store selection.
	var (
		store      domain.SessionStore
		storeCheck app.Pinger
	)
	switch cfg.SessionStore {
	case "memory", "":
		store = memory.New()
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		store = redisstore.New(rdb)
		storeCheck = redisPinger{rdb: rdb}
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repo := postgres.NewSessionRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("schema setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		store = repo
		storeCheck = pool
	default:
		slog.Error("unknown SESSION_STORE", slog.String("value", cfg.SessionStore))
		os.Exit(1)
	}
	slog.Info("session store ready", slog.String("kind", cfg.SessionStore))

	// Job posting catalog.
	catalog, err := jobs.Load(cfg.JobsFile)
	if err != nil {
		slog.Error("job catalog load failed", slog.String("file", cfg.JobsFile), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("job catalog loaded", slog.Int("postings", len(catalog.List())))

	// Lifecycle event stream (optional).
	var (
		events      domain.EventPublisher
		brokerCheck app.BrokerPinger
	)
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := redpanda.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			slog.Error("event publisher connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = pub.Close() }()
		events = pub
		brokerCheck = pub
	} else {
		slog.Info("no KAFKA_BROKERS configured, lifecycle events disabled")
	}

	// Completion client: real provider when credentials exist, otherwise the
	// deterministic stub so the service stays runnable locally.
	var client domain.CompletionClient
	if cfg.ProviderAPIKey != "" {
		client = openrouter.New(cfg)
	} else {
		slog.Warn("PROVIDER_API_KEY not set, using deterministic stub replies")
		client = stub.New()
	}
	gateway := ai.NewGateway(client, cfg)

	sessions := usecase.NewSessionService(store, catalog, events, cfg.SessionTTL)
	builder := prompt.NewBuilder(cfg.ChatModel, cfg.PromptHistoryWindow, cfg.PromptTokenBudget)
	conv := usecase.NewConversationService(sessions, catalog, gateway, builder)

	// Periodic expired-session eviction.
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go app.NewExpiredSessionSweeper(sessions, cfg.CleanupInterval).Run(sweepCtx)

	storeReady, brokerReady := app.BuildReadinessChecks(storeCheck, brokerCheck)
	srv := httpserver.NewServer(cfg, sessions, conv, catalog, storeReady, brokerReady)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
