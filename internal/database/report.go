package database

import (
	"context"
	"fmt"
	"time"
)

// AvailabilityReport summarizes the persisted verdicts.
type AvailabilityReport struct {
	GeneratedAt          time.Time      `json:"generatedAt"`
	TotalChecked         int            `json:"totalChecked"`
	Available            int            `json:"available"`
	Unavailable          int            `json:"unavailable"`
	StaleChecks          int            `json:"staleChecks"`
	QualityDistribution  map[string]int `json:"qualityDistribution"`
	ProviderDistribution map[string]int `json:"providerDistribution"`
	HDRCount             int            `json:"hdrCount"`
}

// GenerateReport builds an availability report over the history table.
// staleAfter marks verdicts due for re-verification.
func (s *AvailabilityStore) GenerateReport(ctx context.Context, staleAfter time.Duration) (*AvailabilityReport, error) {
	report := &AvailabilityReport{
		GeneratedAt:          time.Now(),
		QualityDistribution:  make(map[string]int),
		ProviderDistribution: make(map[string]int),
	}

	if err := s.getCounts(ctx, report, staleAfter); err != nil {
		return nil, fmt.Errorf("failed to get counts: %w", err)
	}
	if err := s.getQualityDistribution(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to get quality distribution: %w", err)
	}
	if err := s.getProviderDistribution(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to get provider distribution: %w", err)
	}

	return report, nil
}

func (s *AvailabilityStore) getCounts(ctx context.Context, report *AvailabilityReport, staleAfter time.Duration) error {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE available = true) as available,
			COUNT(*) FILTER (WHERE available = false) as unavailable,
			COUNT(*) FILTER (WHERE has_hdr = true) as hdr,
			COUNT(*) FILTER (WHERE checked_at < NOW() - $1::interval) as stale
		FROM availability_checks
	`

	interval := fmt.Sprintf("%d seconds", int(staleAfter.Seconds()))
	return s.db.QueryRowContext(ctx, query, interval).Scan(
		&report.TotalChecked,
		&report.Available,
		&report.Unavailable,
		&report.HDRCount,
		&report.StaleChecks,
	)
}

func (s *AvailabilityStore) getQualityDistribution(ctx context.Context, report *AvailabilityReport) error {
	query := `
		SELECT COALESCE(NULLIF(best_quality, ''), 'Unknown') as quality, COUNT(*) as count
		FROM availability_checks
		WHERE available = true
		GROUP BY quality
		ORDER BY count DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var quality string
		var count int
		if err := rows.Scan(&quality, &count); err != nil {
			return err
		}
		report.QualityDistribution[quality] = count
	}

	return rows.Err()
}

func (s *AvailabilityStore) getProviderDistribution(ctx context.Context, report *AvailabilityReport) error {
	query := `
		SELECT provider, COUNT(*) as count
		FROM availability_checks
		GROUP BY provider
		ORDER BY count DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var count int
		if err := rows.Scan(&provider, &count); err != nil {
			return err
		}
		report.ProviderDistribution[provider] = count
	}

	return rows.Err()
}
