package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dompet/internal/auth"
	"dompet/internal/backend"
	"dompet/internal/cache"
	"dompet/internal/config"
	"dompet/internal/feed"
	apphttp "dompet/internal/http"
	applog "dompet/internal/log"
	"dompet/internal/notify"
	"dompet/internal/services"
	"dompet/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ledgerBackend, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		SupabaseURL:  cfg.SupabaseURL,
		SupabaseKey:  cfg.SupabaseKey,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer ledgerBackend.Close()
	logger.Info("Storage backend initialized", "backend", cfg.DataBackend)

	notifier := notify.New(logger.Logger)
	defer notifier.Close()

	// The change feed is optional: without AMQP the API still runs, it just
	// stops feeding the backup worker.
	publishers := []store.Publisher{notifier}
	if cfg.AMQPURL != "" {
		feedClient, err := feed.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.Logger)
		if err != nil {
			logger.Warn("Change feed unavailable, continuing without it", "error", err)
		} else {
			defer feedClient.Close()
			publishers = append(publishers, feedClient)
			logger.Info("Change feed initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("Change feed disabled - no AMQP_URL provided")
	}

	st := store.New(ledgerBackend, logger.Logger, publishers...)
	contributions := services.NewContributionService(st, logger.Logger)
	dashboard := services.NewDashboardService(st, notifier, logger.Logger)

	tokens, err := auth.ParseTokenPairs(cfg.AuthTokens)
	if err != nil {
		logger.Error("Failed to parse auth tokens", "error", err)
		os.Exit(1)
	}
	if len(tokens) == 0 {
		logger.Warn("No auth tokens configured, every request will be rejected")
	}
	registry := auth.NewRegistry(tokens)

	cacheManager := cache.NewManager()
	cacheManager.Register(registry.Sessions())
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, st, contributions, dashboard, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting dompet server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
			return gctx.Err()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
