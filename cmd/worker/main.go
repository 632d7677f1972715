package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/availability"
	"github.com/zaratek/streamscout/internal/config"
	"github.com/zaratek/streamscout/internal/database"
	"github.com/zaratek/streamscout/internal/logger"
	"github.com/zaratek/streamscout/internal/models"
	"github.com/zaratek/streamscout/internal/providers"
)

// staleBatchSize bounds how many stale verdicts one pass re-resolves.
const staleBatchSize = 100

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("Re-verification worker requires DATABASE_URL")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewAvailabilityStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	chain := make([]providers.StreamProvider, 0, len(cfg.Providers))
	for _, d := range cfg.Providers {
		chain = append(chain, providers.NewAddonProvider(d, cfg.RequestTimeout, cfg.ProbeTimeout, log))
	}
	health := providers.NewHealthTracker(cfg.MaxFailures, cfg.HealthCooldown)
	resolver := providers.NewFallbackResolver(chain, health, log)
	svc := availability.NewService(resolver, store, cfg.BatchConcurrency, log)

	log.Info("Re-verification worker started",
		zap.Duration("interval", cfg.WorkerInterval),
		zap.Duration("stale_after", cfg.StaleAfter))

	// Run immediately on startup, then on the ticker.
	runReverification(ctx, svc, store, cfg, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Re-verification worker stopping")
			return
		case <-ticker.C:
			runReverification(ctx, svc, store, cfg, log)
		}
	}
}

// runReverification re-resolves verdicts older than the stale cutoff.
// The batch coordinator's timeout bounds each pass; the service records
// refreshed verdicts through the history store as it goes.
func runReverification(ctx context.Context, svc *availability.Service, store *database.AvailabilityStore, cfg *config.Config, log *zap.Logger) {
	stale, err := store.ListStale(ctx, cfg.StaleAfter, staleBatchSize)
	if err != nil {
		log.Error("Failed to list stale verdicts", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		log.Info("No stale verdicts to re-verify")
		return
	}

	log.Info("Re-verifying stale verdicts", zap.Int("count", len(stale)))

	// No required-count cap: every stale item should be refreshed.
	results := svc.ResolveBatch(ctx, stale, len(stale), cfg.BatchTimeout)

	available := countAvailable(results)
	log.Info("Re-verification pass complete",
		zap.Int("checked", len(results)),
		zap.Int("available", available))
}

func countAvailable(items []models.AnnotatedItem) int {
	n := 0
	for _, item := range items {
		if item.Availability.Available {
			n++
		}
	}
	return n
}
