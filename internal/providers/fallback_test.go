package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/zaratek/streamscout/internal/models"
)

// fakeProvider is a scriptable StreamProvider that records call order.
type fakeProvider struct {
	name     string
	priority int
	streams  []models.StreamRecord
	err      error
	calls    *[]string
}

func (f *fakeProvider) Name() string                         { return f.name }
func (f *fakeProvider) Priority() int                        { return f.priority }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeProvider) GetMovieStreams(ctx context.Context, imdbID string) ([]models.StreamRecord, error) {
	*f.calls = append(*f.calls, f.name)
	return f.streams, f.err
}

func (f *fakeProvider) GetTVStreams(ctx context.Context, imdbID string, season, episode int) ([]models.StreamRecord, error) {
	*f.calls = append(*f.calls, f.name)
	return f.streams, f.err
}

func someStreams(n int) []models.StreamRecord {
	streams := make([]models.StreamRecord, n)
	for i := range streams {
		streams[i] = models.StreamRecord{Name: "4K", Title: "Movie.2160p.WEB-DL"}
	}
	return streams
}

func TestFallbackQueriesInPriorityOrderAndStopsAtFirstSuccess(t *testing.T) {
	var calls []string
	a := &fakeProvider{name: "a", priority: 1, streams: nil, calls: &calls}
	b := &fakeProvider{name: "b", priority: 2, streams: someStreams(2), calls: &calls}
	c := &fakeProvider{name: "c", priority: 3, streams: someStreams(5), calls: &calls}

	// Deliberately registered out of order; the resolver must sort.
	r := NewFallbackResolver([]StreamProvider{c, b, a}, NewHealthTracker(3, 0), nil)
	result := r.ResolveMovie(context.Background(), "tt0111161")

	if result.Provider != "b" {
		t.Fatalf("Provider = %q, want b (first non-empty success)", result.Provider)
	}
	if len(result.Streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(result.Streams))
	}
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("call order = %v, want [a b] (c never queried)", calls)
	}
}

func TestFallbackEmptyResultDoesNotDegradeHealth(t *testing.T) {
	var calls []string
	health := NewHealthTracker(1, 0)
	empty := &fakeProvider{name: "empty", priority: 1, streams: nil, calls: &calls}
	winner := &fakeProvider{name: "winner", priority: 2, streams: someStreams(1), calls: &calls}

	r := NewFallbackResolver([]StreamProvider{empty, winner}, health, nil)
	r.ResolveMovie(context.Background(), "tt0111161")

	// Threshold is 1: a single recorded failure would trip the breaker.
	if health.ShouldSkip("empty") {
		t.Fatal("a valid empty result must not count as a provider failure")
	}
}

func TestFallbackErrorDegradesHealthAndContinues(t *testing.T) {
	var calls []string
	health := NewHealthTracker(1, 0)
	broken := &fakeProvider{name: "broken", priority: 1, err: errors.New("status 502"), calls: &calls}
	winner := &fakeProvider{name: "winner", priority: 2, streams: someStreams(1), calls: &calls}

	r := NewFallbackResolver([]StreamProvider{broken, winner}, health, nil)
	result := r.ResolveMovie(context.Background(), "tt0111161")

	if result.Provider != "winner" {
		t.Fatalf("Provider = %q, want winner", result.Provider)
	}
	if !health.ShouldSkip("broken") {
		t.Fatal("a provider error must degrade that provider's health")
	}
}

func TestFallbackSkipsUnhealthyProviders(t *testing.T) {
	var calls []string
	health := NewHealthTracker(1, 0)
	health.RecordFailure("tripped")

	tripped := &fakeProvider{name: "tripped", priority: 1, streams: someStreams(1), calls: &calls}
	winner := &fakeProvider{name: "winner", priority: 2, streams: someStreams(1), calls: &calls}

	r := NewFallbackResolver([]StreamProvider{tripped, winner}, health, nil)
	result := r.ResolveMovie(context.Background(), "tt0111161")

	if result.Provider != "winner" {
		t.Fatalf("Provider = %q, want winner", result.Provider)
	}
	for _, name := range calls {
		if name == "tripped" {
			t.Fatal("tripped provider must not be queried")
		}
	}
}

func TestFallbackExhaustionIsNotAnError(t *testing.T) {
	var calls []string
	failing := &fakeProvider{name: "x", priority: 1, err: errors.New("timeout"), calls: &calls}
	alsoFailing := &fakeProvider{name: "y", priority: 2, err: errors.New("status 500"), calls: &calls}

	r := NewFallbackResolver([]StreamProvider{failing, alsoFailing}, NewHealthTracker(3, 0), nil)
	result := r.ResolveSeries(context.Background(), "tt0944947", 1, 1)

	if result.Provider != NoProvider {
		t.Fatalf("Provider = %q, want %q", result.Provider, NoProvider)
	}
	if result.Streams == nil || len(result.Streams) != 0 {
		t.Fatalf("Streams = %v, want empty non-nil slice", result.Streams)
	}
}

func TestFallbackSuccessRestoresHealth(t *testing.T) {
	var calls []string
	health := NewHealthTracker(3, 0)
	health.RecordFailure("flaky")
	health.RecordFailure("flaky")

	flaky := &fakeProvider{name: "flaky", priority: 1, streams: someStreams(1), calls: &calls}
	r := NewFallbackResolver([]StreamProvider{flaky}, health, nil)
	r.ResolveMovie(context.Background(), "tt0111161")

	health.RecordFailure("flaky")
	health.RecordFailure("flaky")
	if health.ShouldSkip("flaky") {
		t.Fatal("a winning fetch must fully restore the provider's health")
	}
}
