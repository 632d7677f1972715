package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zaratek/streamscout/internal/availability"
	"github.com/zaratek/streamscout/internal/models"
)

// AvailabilityStore persists resolution verdicts for reporting and for the
// re-verification worker. It implements availability.History.
type AvailabilityStore struct {
	db *sql.DB
}

// NewAvailabilityStore creates a store over an open connection pool.
func NewAvailabilityStore(db *sql.DB) *AvailabilityStore {
	return &AvailabilityStore{db: db}
}

// EnsureSchema creates the availability_checks table if missing.
func (s *AvailabilityStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS availability_checks (
			external_id   TEXT NOT NULL,
			media_type    TEXT NOT NULL,
			season        INT NOT NULL DEFAULT 0,
			episode       INT NOT NULL DEFAULT 0,
			provider      TEXT NOT NULL,
			available     BOOLEAN NOT NULL,
			stream_count  INT NOT NULL,
			best_quality  TEXT,
			sources       TEXT,
			audio_codec   TEXT,
			video_codec   TEXT,
			has_hdr       BOOLEAN NOT NULL DEFAULT FALSE,
			checked_at    TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (external_id, media_type, season, episode)
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure availability schema: %w", err)
	}
	return nil
}

// RecordCheck upserts the latest verdict for a content item.
func (s *AvailabilityStore) RecordCheck(ctx context.Context, check availability.CheckRecord) error {
	query := `
		INSERT INTO availability_checks (
			external_id, media_type, season, episode, provider,
			available, stream_count, best_quality, sources,
			audio_codec, video_codec, has_hdr, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (external_id, media_type, season, episode) DO UPDATE SET
			provider = EXCLUDED.provider,
			available = EXCLUDED.available,
			stream_count = EXCLUDED.stream_count,
			best_quality = EXCLUDED.best_quality,
			sources = EXCLUDED.sources,
			audio_codec = EXCLUDED.audio_codec,
			video_codec = EXCLUDED.video_codec,
			has_hdr = EXCLUDED.has_hdr,
			checked_at = EXCLUDED.checked_at
	`

	_, err := s.db.ExecContext(ctx, query,
		check.ExternalID,
		check.MediaType,
		check.Season,
		check.Episode,
		check.Provider,
		check.Status.Available,
		check.Status.StreamCount,
		check.Status.BestQuality,
		strings.Join(check.Status.Sources, ","),
		check.Status.AudioCodec,
		check.Status.VideoCodec,
		check.Status.HasHDR,
		check.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record availability check: %w", err)
	}
	return nil
}

// ListStale returns content refs whose verdict is older than the cutoff,
// oldest first, for re-verification.
func (s *AvailabilityStore) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]models.ContentRef, error) {
	query := `
		SELECT external_id, media_type, season, episode
		FROM availability_checks
		WHERE checked_at < NOW() - $1::interval
		ORDER BY checked_at ASC
		LIMIT $2
	`

	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	rows, err := s.db.QueryContext(ctx, query, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale checks: %w", err)
	}
	defer rows.Close()

	var refs []models.ContentRef
	for rows.Next() {
		var ref models.ContentRef
		if err := rows.Scan(&ref.ExternalID, &ref.MediaType, &ref.Season, &ref.Episode); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}
