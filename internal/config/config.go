package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zaratek/streamscout/internal/providers"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => colored dev output, false => JSON

	// Provider chain
	Providers        []providers.Descriptor
	RequestTimeout   time.Duration // per provider call
	ProbeTimeout     time.Duration // liveness probe, shorter than RequestTimeout
	MaxFailures      int           // consecutive failures before a provider is skipped
	HealthCooldown   time.Duration // how long a tripped provider stays excluded
	BatchTimeout     time.Duration // outer wall-clock budget for one batch
	BatchConcurrency int           // concurrent in-flight resolutions per batch
	RequiredCount    int           // target result count per batch

	// Cache (Redis, optional — empty addr disables caching)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheHitTTL   time.Duration
	CacheMissTTL  time.Duration

	// History (Postgres, optional — empty URL disables persistence)
	DatabaseURL string

	// Metadata upstream
	TMDBAPIKey string

	// Worker
	WorkerInterval time.Duration // how often the re-verification pass runs
	StaleAfter     time.Duration // verdicts older than this get re-resolved
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		ListenAddr:      getenv("STREAMSCOUT_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: getenvDuration("STREAMSCOUT_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("STREAMSCOUT_LOG_LEVEL", "info"),
		PrettyLog: getenvBool("STREAMSCOUT_PRETTY_LOG", false),

		Providers:        parseProviders(getenv("STREAMSCOUT_PROVIDERS", "")),
		RequestTimeout:   getenvDuration("STREAMSCOUT_REQUEST_TIMEOUT", providers.DefaultRequestTimeout),
		ProbeTimeout:     getenvDuration("STREAMSCOUT_PROBE_TIMEOUT", providers.DefaultProbeTimeout),
		MaxFailures:      getenvInt("STREAMSCOUT_MAX_FAILURES", providers.DefaultMaxFailures),
		HealthCooldown:   getenvDuration("STREAMSCOUT_HEALTH_COOLDOWN", providers.DefaultCooldown),
		BatchTimeout:     getenvDuration("STREAMSCOUT_BATCH_TIMEOUT", 15*time.Second),
		BatchConcurrency: getenvInt("STREAMSCOUT_BATCH_CONCURRENCY", 5),
		RequiredCount:    getenvInt("STREAMSCOUT_REQUIRED_COUNT", 20),

		RedisAddr:     getenv("STREAMSCOUT_REDIS_ADDR", ""),
		RedisPassword: getenv("STREAMSCOUT_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("STREAMSCOUT_REDIS_DB", 0),
		CacheHitTTL:   getenvDuration("STREAMSCOUT_CACHE_HIT_TTL", 6*time.Hour),
		CacheMissTTL:  getenvDuration("STREAMSCOUT_CACHE_MISS_TTL", 15*time.Minute),

		DatabaseURL: getenv("DATABASE_URL", ""),

		TMDBAPIKey: getenv("STREAMSCOUT_TMDB_API_KEY", ""),

		WorkerInterval: getenvDuration("STREAMSCOUT_WORKER_INTERVAL", 6*time.Hour),
		StaleAfter:     getenvDuration("STREAMSCOUT_STALE_AFTER", 14*24*time.Hour),
	}
}

// defaultProviders is the chain used when STREAMSCOUT_PROVIDERS is unset.
func defaultProviders() []providers.Descriptor {
	return []providers.Descriptor{
		{Name: "torrentio", BaseURL: "https://torrentio.strem.fun", Priority: 1},
		{Name: "comet", BaseURL: "https://comet.elfhosted.com", Priority: 2},
		{Name: "mediafusion", BaseURL: "https://mediafusion.elfhosted.com", Priority: 3},
	}
}

// parseProviders parses "name=url=priority,name=url=priority,...".
// Malformed entries are dropped; an empty or fully-malformed value falls
// back to the default chain.
func parseProviders(raw string) []providers.Descriptor {
	if raw == "" {
		return defaultProviders()
	}

	var descriptors []providers.Descriptor
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 3)
		if len(parts) != 3 {
			continue
		}
		priority, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		descriptors = append(descriptors, providers.Descriptor{
			Name:     parts[0],
			BaseURL:  parts[1],
			Priority: priority,
		})
	}

	if len(descriptors) == 0 {
		return defaultProviders()
	}
	return descriptors
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
