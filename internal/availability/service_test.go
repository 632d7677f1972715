package availability

import (
	"context"
	"sync"
	"testing"

	"github.com/zaratek/streamscout/internal/models"
	"github.com/zaratek/streamscout/internal/providers"
)

// fakeStreamResolver serves canned results per external id. IDs listed in
// stall block until the context is cancelled, simulating a hung upstream.
type fakeStreamResolver struct {
	mu      sync.Mutex
	results map[string]providers.Result
	stall   map[string]bool
	calls   []string
}

func newFakeStreamResolver() *fakeStreamResolver {
	return &fakeStreamResolver{
		results: make(map[string]providers.Result),
		stall:   make(map[string]bool),
	}
}

func (f *fakeStreamResolver) resolve(ctx context.Context, imdbID string) providers.Result {
	f.mu.Lock()
	f.calls = append(f.calls, imdbID)
	stalls := f.stall[imdbID]
	result, ok := f.results[imdbID]
	f.mu.Unlock()

	if stalls {
		<-ctx.Done()
		return providers.Result{Streams: []models.StreamRecord{}, Provider: providers.NoProvider}
	}
	if !ok {
		return providers.Result{Streams: []models.StreamRecord{}, Provider: providers.NoProvider}
	}
	return result
}

func (f *fakeStreamResolver) ResolveMovie(ctx context.Context, imdbID string) providers.Result {
	return f.resolve(ctx, imdbID)
}

func (f *fakeStreamResolver) ResolveSeries(ctx context.Context, imdbID string, season, episode int) providers.Result {
	return f.resolve(ctx, imdbID)
}

// fakeHistory captures recorded checks.
type fakeHistory struct {
	mu     sync.Mutex
	checks []CheckRecord
}

func (f *fakeHistory) RecordCheck(ctx context.Context, check CheckRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, check)
	return nil
}

func goodResult(provider string) providers.Result {
	return providers.Result{
		Provider: provider,
		Streams: []models.StreamRecord{
			{Name: "4K", Title: "Movie.2024.2160p.WEB-DL.TrueHD.Atmos.HEVC"},
		},
	}
}

func TestResolveMovieClassifiesWinningStreams(t *testing.T) {
	resolver := newFakeStreamResolver()
	resolver.results["tt0111161"] = goodResult("torrentio")

	svc := NewService(resolver, nil, 0, nil)
	status := svc.ResolveMovie(context.Background(), "tt0111161")

	if !status.Available {
		t.Fatal("expected available verdict")
	}
	if status.BestQuality != "2160p" {
		t.Errorf("BestQuality = %q, want 2160p", status.BestQuality)
	}
}

func TestResolveMovieExhaustionYieldsUnavailable(t *testing.T) {
	svc := NewService(newFakeStreamResolver(), nil, 0, nil)
	status := svc.ResolveMovie(context.Background(), "tt9999999")

	if status.Available {
		t.Fatal("provider exhaustion must yield an unavailable verdict, not panic or error")
	}
}

func TestResolveTVRecordsHistory(t *testing.T) {
	resolver := newFakeStreamResolver()
	resolver.results["tt0944947"] = goodResult("comet")
	history := &fakeHistory{}

	svc := NewService(resolver, history, 0, nil)
	svc.ResolveTV(context.Background(), "tt0944947", 3, 9)

	if len(history.checks) != 1 {
		t.Fatalf("recorded %d checks, want 1", len(history.checks))
	}
	check := history.checks[0]
	if check.MediaType != models.MediaTypeSeries || check.Season != 3 || check.Episode != 9 {
		t.Errorf("unexpected check record: %+v", check)
	}
	if check.Provider != "comet" {
		t.Errorf("Provider = %q, want comet", check.Provider)
	}
}
