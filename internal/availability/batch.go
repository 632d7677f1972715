package availability

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zaratek/streamscout/internal/models"
)

// ResolveBatch resolves a list of content items with bounded concurrency,
// racing the whole batch against a wall-clock timeout. When the timer fires
// first, whatever completed so far is returned and the remaining in-flight
// resolutions are cancelled; their results are discarded.
//
// Results arrive in completion order, not input order. A batch that yields
// zero available items is a valid outcome; the caller owns any fallback
// content strategy. The returned list is capped at requiredCount.
func (s *Service) ResolveBatch(ctx context.Context, items []models.ContentRef, requiredCount int, timeout time.Duration) []models.AnnotatedItem {
	if len(items) == 0 {
		return []models.AnnotatedItem{}
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu        sync.Mutex
		completed []models.AnnotatedItem
	)

	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(s.concurrency)

	// Dispatch happens off the coordinating goroutine: Go blocks while the
	// concurrency limit is saturated, and the timer below has to be counting
	// down before the first slow item, not after the last hand-off.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, item := range items {
			item := item
			g.Go(func() error {
				status := s.resolveItem(gctx, item)

				// A resolution cut short by cancellation would report a
				// spurious "unavailable"; drop it instead.
				if gctx.Err() != nil {
					return nil
				}

				mu.Lock()
				completed = append(completed, models.AnnotatedItem{
					ContentRef:   item,
					Availability: status,
				})
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("Batch resolution timed out, returning partial results",
			zap.Int("items", len(items)),
			zap.Duration("timeout", timeout))
		cancel()
	case <-ctx.Done():
		cancel()
	}

	mu.Lock()
	results := make([]models.AnnotatedItem, len(completed))
	copy(results, completed)
	mu.Unlock()

	if requiredCount > 0 && len(results) > requiredCount {
		results = results[:requiredCount]
	}

	s.logger.Info("Batch resolution finished",
		zap.Int("requested", len(items)),
		zap.Int("completed", len(results)))

	return results
}
