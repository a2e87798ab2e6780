package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/metamind/internal/api"
	"github.com/saturnino-fabrica-de-software/metamind/internal/audit"
	"github.com/saturnino-fabrica-de-software/metamind/internal/cache"
	"github.com/saturnino-fabrica-de-software/metamind/internal/config"
	"github.com/saturnino-fabrica-de-software/metamind/internal/database"
	"github.com/saturnino-fabrica-de-software/metamind/internal/emotion"
	"github.com/saturnino-fabrica-de-software/metamind/internal/metrics"
	"github.com/saturnino-fabrica-de-software/metamind/internal/provider"
	"github.com/saturnino-fabrica-de-software/metamind/internal/repository"
	"github.com/saturnino-fabrica-de-software/metamind/internal/service"
	"github.com/saturnino-fabrica-de-software/metamind/internal/webhook"
	"github.com/saturnino-fabrica-de-software/metamind/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting MetaMind Emotion API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.ProviderType),
		slog.Bool("auth", cfg.AuthEnabled()),
		slog.Bool("history", cfg.HistoryEnabled()),
		slog.Bool("webhook", cfg.WebhookEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLogger := audit.NewSlogLogger(logger)

	emotionProvider, err := emotion.NewEmotionProvider(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create emotion provider: %w", err)
	}
	if closer, ok := emotionProvider.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	svc := service.NewAnalysisService(emotionProvider, cache.NewResultCache(cfg.CacheTTL), logger).
		WithPublisher(hub).
		WithAuditLogger(auditLogger).
		WithMaxImageBytes(cfg.MaxImageBytes)

	if cfg.WebhookEnabled() {
		worker := webhook.NewWorker(webhook.Webhook{
			URL:    cfg.WebhookURL,
			Secret: cfg.WebhookSecret,
			Events: cfg.WebhookEvents,
		}, webhook.NewSender(cfg.WebhookTimeout), logger)
		go worker.Run(ctx)
		svc.WithPublisher(worker)
	}

	deps := &api.Dependencies{
		Service:      svc,
		Hub:          hub,
		ProviderName: emotionProvider.Name(),
		APIKey:       cfg.APIKey,
		RateLimitMax: cfg.RateLimitMax,
		BodyLimit:    cfg.MaxImageBytes,

		AnalyzeRateLimitMax: cfg.AnalyzeRateLimitMax,
	}
	if check, ok := emotionProvider.(provider.HealthChecker); ok {
		deps.ProviderCheck = check
	}

	if cfg.HistoryEnabled() {
		if cfg.AutoMigrate {
			dbName, err := database.DatabaseName(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := database.MigrateUp(cfg.DatabaseURL, dbName); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied")
		}

		pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		svc.WithRepository(repository.NewAnalysisRepository(pool))
		deps.DB = pool

		metricsRepo := metrics.NewRepository(pool)
		deps.Stats = metricsRepo

		if cfg.HistoryRetention > 0 {
			pruner := metrics.NewPruner(metricsRepo, logger, cfg.HistoryRetention, 0)
			go pruner.Start(ctx)
		}
	}

	// Setup router
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")

	return nil
}
