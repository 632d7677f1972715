package providers

import (
	"sync"
	"time"
)

// Health tracker defaults. Three consecutive failures within the cool-down
// window take a provider out of rotation; the window expiring restores it.
const (
	DefaultMaxFailures = 3
	DefaultCooldown    = 5 * time.Minute
)

type healthRecord struct {
	failureCount int
	lastCheck    time.Time
}

// HealthTracker is an in-memory circuit breaker keyed by provider name.
// It is shared by all in-flight resolutions; state is a mutex-guarded map
// of per-provider failure counts.
type HealthTracker struct {
	mu      sync.Mutex
	records map[string]*healthRecord

	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

// NewHealthTracker creates an isolated tracker instance. Pass zero values
// to use the defaults.
func NewHealthTracker(maxFailures int, cooldown time.Duration) *HealthTracker {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &HealthTracker{
		records:     make(map[string]*healthRecord),
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// ShouldSkip reports whether the provider has crossed the failure threshold
// within the cool-down window. A record older than the window is discarded
// entirely: expiry is a full reset, not a decay.
func (t *HealthTracker) ShouldSkip(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[name]
	if !ok {
		return false
	}

	if t.now().Sub(rec.lastCheck) >= t.cooldown {
		delete(t.records, name)
		return false
	}

	return rec.failureCount >= t.maxFailures
}

// RecordFailure increments the provider's failure count and refreshes its
// timestamp, creating the record if needed.
func (t *HealthTracker) RecordFailure(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[name]
	if !ok {
		rec = &healthRecord{}
		t.records[name] = rec
	}
	rec.failureCount++
	rec.lastCheck = t.now()
}

// RecordSuccess deletes the provider's record outright. A single success
// fully exonerates a provider; there is no gradual decrement.
func (t *HealthTracker) RecordSuccess(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.records, name)
}
