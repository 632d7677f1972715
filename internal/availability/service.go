package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/models"
	"github.com/zaratek/streamscout/internal/providers"
	"github.com/zaratek/streamscout/internal/quality"
)

// StreamResolver finds candidate streams for a content item. Satisfied by
// providers.FallbackResolver.
type StreamResolver interface {
	ResolveMovie(ctx context.Context, imdbID string) providers.Result
	ResolveSeries(ctx context.Context, imdbID string, season, episode int) providers.Result
}

// History persists resolved verdicts for reporting and re-verification.
// Writes are best-effort; a failing history store never fails a resolution.
type History interface {
	RecordCheck(ctx context.Context, check CheckRecord) error
}

// CheckRecord is one persisted resolution outcome.
type CheckRecord struct {
	ExternalID string
	MediaType  string
	Season     int
	Episode    int
	Provider   string
	Status     models.AvailabilityStatus
	CheckedAt  time.Time
}

// Service is the engine's entry point: per-item resolution plus the batch
// coordinator in batch.go.
type Service struct {
	resolver    StreamResolver
	history     History
	concurrency int
	logger      *zap.Logger
}

// DefaultConcurrency caps in-flight batch resolutions to respect upstream
// rate limits.
const DefaultConcurrency = 5

// NewService wires the engine. history may be nil; concurrency <= 0 uses
// the default.
func NewService(resolver StreamResolver, history History, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:    resolver,
		history:     history,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ResolveMovie resolves the availability verdict for one movie.
func (s *Service) ResolveMovie(ctx context.Context, imdbID string) models.AvailabilityStatus {
	res := s.resolver.ResolveMovie(ctx, imdbID)
	status := quality.Classify(res.Streams)

	s.logger.Debug("Resolved movie availability",
		zap.String("imdb_id", imdbID),
		zap.String("provider", res.Provider),
		zap.Bool("available", status.Available),
		zap.String("best_quality", status.BestQuality))

	s.record(ctx, CheckRecord{
		ExternalID: imdbID,
		MediaType:  models.MediaTypeMovie,
		Provider:   res.Provider,
		Status:     status,
		CheckedAt:  time.Now(),
	})

	return status
}

// ResolveTV resolves the availability verdict for one episode.
func (s *Service) ResolveTV(ctx context.Context, imdbID string, season, episode int) models.AvailabilityStatus {
	res := s.resolver.ResolveSeries(ctx, imdbID, season, episode)
	status := quality.Classify(res.Streams)

	s.logger.Debug("Resolved episode availability",
		zap.String("imdb_id", imdbID),
		zap.Int("season", season),
		zap.Int("episode", episode),
		zap.String("provider", res.Provider),
		zap.Bool("available", status.Available))

	s.record(ctx, CheckRecord{
		ExternalID: imdbID,
		MediaType:  models.MediaTypeSeries,
		Season:     season,
		Episode:    episode,
		Provider:   res.Provider,
		Status:     status,
		CheckedAt:  time.Now(),
	})

	return status
}

// resolveItem dispatches one ContentRef to the right entry point.
func (s *Service) resolveItem(ctx context.Context, item models.ContentRef) models.AvailabilityStatus {
	if item.MediaType == models.MediaTypeSeries {
		return s.ResolveTV(ctx, item.ExternalID, item.Season, item.Episode)
	}
	return s.ResolveMovie(ctx, item.ExternalID)
}

func (s *Service) record(ctx context.Context, check CheckRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordCheck(ctx, check); err != nil {
		s.logger.Warn("Failed to record availability check",
			zap.String("imdb_id", check.ExternalID),
			zap.Error(err))
	}
}
