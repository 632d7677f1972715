package providers

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/models"
)

// NoProvider is the provider name reported when every upstream was skipped,
// failed, or came back empty. Exhaustion is a legitimate "unavailable"
// outcome, never an error.
const NoProvider = "none"

// Result is the outcome of one fallback resolution: the winning provider's
// streams, or an empty set with Provider == NoProvider.
type Result struct {
	Streams  []models.StreamRecord
	Provider string
}

// FallbackResolver iterates providers in ascending priority order, skipping
// those the health tracker currently excludes, and stops at the first
// provider that returns at least one candidate stream.
type FallbackResolver struct {
	providers []StreamProvider
	health    *HealthTracker
	logger    *zap.Logger
}

// NewFallbackResolver builds a resolver over the given providers. The
// priority order is fixed at construction time.
func NewFallbackResolver(provs []StreamProvider, health *HealthTracker, logger *zap.Logger) *FallbackResolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	ordered := make([]StreamProvider, len(provs))
	copy(ordered, provs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	return &FallbackResolver{
		providers: ordered,
		health:    health,
		logger:    logger,
	}
}

// ResolveMovie finds candidate streams for a movie.
func (r *FallbackResolver) ResolveMovie(ctx context.Context, imdbID string) Result {
	return r.resolve(ctx, imdbID, func(ctx context.Context, p StreamProvider) ([]models.StreamRecord, error) {
		return p.GetMovieStreams(ctx, imdbID)
	})
}

// ResolveSeries finds candidate streams for one episode.
func (r *FallbackResolver) ResolveSeries(ctx context.Context, imdbID string, season, episode int) Result {
	return r.resolve(ctx, imdbID, func(ctx context.Context, p StreamProvider) ([]models.StreamRecord, error) {
		return p.GetTVStreams(ctx, imdbID, season, episode)
	})
}

// resolve runs the fallback chain. Individual provider errors are recovered
// locally: they degrade the provider's health and the loop moves on. An
// empty 2xx result moves on without touching health state. First non-empty
// success wins and restores the provider's health.
func (r *FallbackResolver) resolve(ctx context.Context, imdbID string, fetch func(context.Context, StreamProvider) ([]models.StreamRecord, error)) Result {
	for _, p := range r.providers {
		if ctx.Err() != nil {
			break
		}

		if r.health.ShouldSkip(p.Name()) {
			r.logger.Debug("Skipping unhealthy provider",
				zap.String("provider", p.Name()),
				zap.String("imdb_id", imdbID))
			continue
		}

		streams, err := fetch(ctx, p)
		if err != nil {
			r.health.RecordFailure(p.Name())
			r.logger.Warn("Provider failed",
				zap.String("provider", p.Name()),
				zap.String("imdb_id", imdbID),
				zap.Error(err))
			continue
		}

		if len(streams) == 0 {
			continue
		}

		r.health.RecordSuccess(p.Name())
		r.logger.Debug("Provider returned streams",
			zap.String("provider", p.Name()),
			zap.String("imdb_id", imdbID),
			zap.Int("count", len(streams)))

		return Result{Streams: streams, Provider: p.Name()}
	}

	return Result{Streams: []models.StreamRecord{}, Provider: NoProvider}
}
