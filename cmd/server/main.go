// Command server starts the Interview Oracle HTTP server.
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

	"github.com/redis/go-redis/v9"

	ai "github.com/interview-oracle/api/internal/adapter/ai"
	"github.com/interview-oracle/api/internal/adapter/ai/anthropic"
	aistub "github.com/interview-oracle/api/internal/adapter/ai/stub"
	httpserver "github.com/interview-oracle/api/internal/adapter/httpserver"
	"github.com/interview-oracle/api/internal/adapter/observability"
	"github.com/interview-oracle/api/internal/adapter/repo/memory"
	"github.com/interview-oracle/api/internal/adapter/repo/postgres"
	"github.com/interview-oracle/api/internal/app"
	"github.com/interview-oracle/api/internal/config"
	"github.com/interview-oracle/api/internal/domain"
	"github.com/interview-oracle/api/internal/usecase"
)

func main() {
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

	// Session store: Postgres in normal operation, in-memory when no
	// DB is configured in dev.
	var sessionRepo domain.SessionRepository
	var dbCheck func(context.Context) error
	if cfg.DBURL == "" && cfg.IsDev() {
		slog.Warn("DB_URL empty; using in-memory session store")
		sessionRepo = memory.NewSessionRepo()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			slog.Error("db schema failed", slog.Any("error", err))
			os.Exit(1)
		}
		sessionRepo = postgres.NewSessionRepo(pool)
		dbCheck = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	// Completion gateway: real client when a key is present, stub in dev.
	var completion domain.CompletionClient
	if cfg.AnthropicAPIKey == "" && cfg.IsDev() {
		slog.Warn("ANTHROPIC_API_KEY empty; using stub completion client")
		completion = aistub.New()
	} else {
		completion = anthropic.New(cfg)
	}

	// Optional Redis read-through cache for completions.
	var redisCheck func(context.Context) error
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("redis url invalid", slog.Any("error", err))
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		completion = ai.NewCompletionCache(completion, rdb, cfg.CompletionCacheTTL)
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		slog.Info("completion cache enabled", slog.Duration("ttl", cfg.CompletionCacheTTL))
	}

	genSvc := usecase.NewGenerateService(completion, cfg.CompletionModel, cfg.MaxTokensQuestions, cfg.MaxTokensAnswers, cfg.MaxTokensAnswersLarge)
	sessionSvc := usecase.NewSessionService(sessionRepo)

	srv := httpserver.NewServer(cfg, genSvc, sessionSvc, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
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
