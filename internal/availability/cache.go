package availability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/models"
)

// Cache is the external key-value cache boundary. Implementations live
// outside the core (see internal/store/redis).
type Cache interface {
	// Get returns the cached payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the payload with a bounded TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache TTL defaults. A real result re-verifies slowly; a degraded or empty
// result retries sooner.
const (
	DefaultHitTTL      = 6 * time.Hour
	DefaultDegradedTTL = 15 * time.Minute
)

// CachedResolver wraps the batch entry point with a cache-aside read/write.
type CachedResolver struct {
	svc         *Service
	cache       Cache
	hitTTL      time.Duration
	degradedTTL time.Duration
	logger      *zap.Logger
}

// NewCachedResolver wires the cache-aside wrapper. Zero TTLs use defaults.
func NewCachedResolver(svc *Service, cache Cache, hitTTL, degradedTTL time.Duration, logger *zap.Logger) *CachedResolver {
	if hitTTL <= 0 {
		hitTTL = DefaultHitTTL
	}
	if degradedTTL <= 0 {
		degradedTTL = DefaultDegradedTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedResolver{
		svc:         svc,
		cache:       cache,
		hitTTL:      hitTTL,
		degradedTTL: degradedTTL,
		logger:      logger,
	}
}

// ResolveBatch consults the cache before invoking the core and writes the
// result back on a miss. Cache failures degrade to a direct resolution.
func (c *CachedResolver) ResolveBatch(ctx context.Context, items []models.ContentRef, requiredCount int, timeout time.Duration) []models.AnnotatedItem {
	key := BatchKey(items, requiredCount)

	if payload, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached []models.AnnotatedItem
		if err := json.Unmarshal(payload, &cached); err == nil {
			c.logger.Debug("Batch cache hit", zap.String("key", key), zap.Int("items", len(cached)))
			return cached
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	results := c.svc.ResolveBatch(ctx, items, requiredCount, timeout)

	// A truncated result means the batch timed out before every item was
	// resolved; cache it briefly so the missing items are retried soon.
	expected := len(items)
	if requiredCount > 0 && requiredCount < expected {
		expected = requiredCount
	}

	ttl := c.degradedTTL
	if len(results) >= expected {
		for _, r := range results {
			if r.Availability.Available {
				ttl = c.hitTTL
				break
			}
		}
	}

	if payload, err := json.Marshal(results); err == nil {
		if err := c.cache.Set(ctx, key, payload, ttl); err != nil {
			c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return results
}

// BatchKey derives a deterministic cache key from the batch's semantic
// parameters. Item order does not matter.
func BatchKey(items []models.ContentRef, requiredCount int) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s:%s:%d:%d", item.MediaType, item.ExternalID, item.Season, item.Episode))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|") + fmt.Sprintf("|n=%d", requiredCount)))
	return "batch:" + hex.EncodeToString(sum[:16])
}
