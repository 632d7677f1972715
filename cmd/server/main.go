package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/api"
	"github.com/zaratek/streamscout/internal/availability"
	"github.com/zaratek/streamscout/internal/config"
	"github.com/zaratek/streamscout/internal/database"
	"github.com/zaratek/streamscout/internal/logger"
	"github.com/zaratek/streamscout/internal/metadata"
	"github.com/zaratek/streamscout/internal/providers"
	redisstore "github.com/zaratek/streamscout/internal/store/redis"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer log.Sync()

	log.Info("Starting StreamScout API server", zap.String("addr", cfg.ListenAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Provider chain
	chain := make([]providers.StreamProvider, 0, len(cfg.Providers))
	for _, d := range cfg.Providers {
		chain = append(chain, providers.NewAddonProvider(d, cfg.RequestTimeout, cfg.ProbeTimeout, log))
		log.Info("Configured provider",
			zap.String("name", d.Name),
			zap.String("base_url", d.BaseURL),
			zap.Int("priority", d.Priority))
	}

	health := providers.NewHealthTracker(cfg.MaxFailures, cfg.HealthCooldown)
	resolver := providers.NewFallbackResolver(chain, health, log)

	// Optional verdict history (Postgres)
	var history availability.History
	var reports *database.AvailabilityStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		store := database.NewAvailabilityStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		history = store
		reports = store
		log.Info("Availability history enabled")
	}

	svc := availability.NewService(resolver, history, cfg.BatchConcurrency, log)

	// Optional cache-aside wrapper (Redis)
	var batch api.BatchResolver = svc
	if cfg.RedisAddr != "" {
		cache, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer cache.Close()

		batch = availability.NewCachedResolver(svc, cache, cfg.CacheHitTTL, cfg.CacheMissTTL, log)
		log.Info("Batch cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// Optional metadata lookup (TMDB id -> IMDb id)
	var meta *metadata.TMDBClient
	if cfg.TMDBAPIKey != "" {
		meta = metadata.NewTMDBClient(cfg.TMDBAPIKey)
		log.Info("Metadata lookup enabled")
	}

	server := api.NewServer(svc, batch, reports, meta, cfg.BatchTimeout, cfg.RequiredCount, cfg.StaleAfter, log)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
