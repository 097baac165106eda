package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharkz-dev/UltraEconomy/config"
	httpHandler "github.com/sharkz-dev/UltraEconomy/internal/adapter/http/handler"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/session"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/storage"
	redisStorage "github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/redis"
	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/service"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/logger"
)

// storeHealth exposes the active storage backend as a health checker.
type storeHealth struct {
	kind  string
	store ports.Store
}

func (h storeHealth) Ping(ctx context.Context) error {
	if !h.store.IsConnected(ctx) {
		return fmt.Errorf("%s backend unreachable", h.kind)
	}
	return nil
}

func (h storeHealth) Name() string { return h.kind }

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("storage", cfg.Storage.Kind).
		Int("port", cfg.Server.Port).
		Msg("Starting UltraEconomy")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session directory and user notifications
	sessions := session.NewDirectory(log)
	notifier := session.NewLogNotifier(log)

	// Currency registry
	registry := service.NewCurrencyRegistry(cfg.Economy.FallbackToPrimary, log)
	if err := registry.Load(cfg.Economy.Currencies); err != nil {
		log.Fatal().Err(err).Msg("Failed to load currency definitions")
	}
	log.Info().Int("currencies", len(registry.All())).Msg("Currency registry loaded")

	// Background save workers
	workers := worker.NewPool(cfg.Workers.Size, cfg.Workers.Queue, log)

	// Account cache
	accounts := cache.New(cfg.Cache.MaxSize, cfg.Cache.IdleTTL, cfg.Cache.SweepInterval, log)

	// Storage backend
	store, err := storage.New(ctx, cfg.Storage, accounts, sessions, registry, workers, log)
	if err != nil {
		log.Fatal().Err(err).Str("kind", cfg.Storage.Kind).Msg("Failed to connect storage backend")
	}
	log.Info().Str("kind", cfg.Storage.Kind).Msg("Storage backend connected")

	// Evicted accounts persist synchronously: once the entry is gone the
	// in-memory state is unrecoverable, so the write cannot be deferred.
	accounts.SetWriteBack(func(acc *domain.Account) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.SaveAccountSync(ctx, acc); err != nil {
			log.Error().Err(err).Str("account_id", acc.ID().String()).Msg("Eviction write-back failed")
		}
	})
	accounts.Start()

	// Core service
	economySvc := service.NewEconomyService(
		store, registry, accounts, sessions, notifier, workers,
		cfg.Economy.Notifications, log,
	)

	// Deferred-ledger reconciliation
	reconciler := service.NewReconciler(store, registry, accounts, workers, cfg.Reconcile.Interval, log)
	go reconciler.Run(ctx)

	// Periodic full-cache flush
	if cfg.Cache.FlushInterval > 0 {
		go economySvc.RunPeriodicFlush(ctx, cfg.Cache.FlushInterval)
	}

	// Backups (the service stops itself on backends without backup support)
	if cfg.Backup.Enabled {
		backupSvc := service.NewBackupService(store, cfg.Backup.Interval, cfg.Backup.Retention, log)
		go backupSvc.Run(ctx)
	}

	healthCheckers := []ports.HealthChecker{storeHealth{kind: cfg.Storage.Kind, store: store}}

	// Optional Redis-backed rate limiting
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected, rate limiting enabled")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		EconomySvc:     economySvc,
		Reader:         store,
		Registry:       registry,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the background loops, then flush every dirty account before the
	// store goes away. BeginShutdown keeps the sweeper from racing the flush.
	cancel()
	accounts.BeginShutdown()
	accounts.Close()

	if err := economySvc.FlushAll(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Final account flush incomplete")
	}
	if err := workers.Shutdown(10 * time.Second); err != nil {
		log.Warn().Err(err).Msg("Worker pool drain timed out")
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Storage disconnect failed")
	}

	log.Info().Msg("Server exited")
}
