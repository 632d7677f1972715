package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/models"
)

// Default timeouts. The per-request timeout is deliberately longer than the
// liveness probe: a probe that can't answer in 5s is not worth querying.
const (
	DefaultRequestTimeout = 8 * time.Second
	DefaultProbeTimeout   = 5 * time.Second
)

// StreamProvider is the capability set every upstream indexing service
// adapter must expose. Implementations are statically configured at process
// start and never created or destroyed at runtime.
type StreamProvider interface {
	Name() string
	Priority() int
	IsAvailable(ctx context.Context) bool
	GetMovieStreams(ctx context.Context, imdbID string) ([]models.StreamRecord, error)
	GetTVStreams(ctx context.Context, imdbID string, season, episode int) ([]models.StreamRecord, error)
}

// Descriptor configures one upstream provider. Lower priority is checked
// first.
type Descriptor struct {
	Name     string
	BaseURL  string
	Priority int
}

// AddonProvider adapts a Stremio-addon style indexing service to the
// StreamProvider interface. The wire contract is
// GET {base}/stream/movie/{imdbID}.json and
// GET {base}/stream/series/{imdbID}:{season}:{episode}.json, both returning
// {"streams": [...]}.
type AddonProvider struct {
	name     string
	baseURL  string
	priority int

	client      *http.Client
	probeClient *http.Client
	logger      *zap.Logger
}

// NewAddonProvider builds an adapter for the described service.
func NewAddonProvider(d Descriptor, requestTimeout, probeTimeout time.Duration, logger *zap.Logger) *AddonProvider {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AddonProvider{
		name:        d.Name,
		baseURL:     strings.TrimRight(d.BaseURL, "/"),
		priority:    d.Priority,
		client:      &http.Client{Timeout: requestTimeout},
		probeClient: &http.Client{Timeout: probeTimeout},
		logger:      logger.With(zap.String("provider", d.Name)),
	}
}

func (p *AddonProvider) Name() string  { return p.name }
func (p *AddonProvider) Priority() int { return p.priority }

// IsAvailable probes the addon manifest. Any 2xx answer within the probe
// timeout counts as alive.
func (p *AddonProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/manifest.json", nil)
	if err != nil {
		return false
	}

	resp, err := p.probeClient.Do(req)
	if err != nil {
		p.logger.Debug("Liveness probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// GetMovieStreams fetches candidate streams for a movie.
func (p *AddonProvider) GetMovieStreams(ctx context.Context, imdbID string) ([]models.StreamRecord, error) {
	return p.fetchStreams(ctx, fmt.Sprintf("%s/stream/movie/%s.json", p.baseURL, imdbID))
}

// GetTVStreams fetches candidate streams for one episode.
func (p *AddonProvider) GetTVStreams(ctx context.Context, imdbID string, season, episode int) ([]models.StreamRecord, error) {
	return p.fetchStreams(ctx, fmt.Sprintf("%s/stream/series/%s:%d:%d.json", p.baseURL, imdbID, season, episode))
}

// fetchStreams performs one bounded request against the addon. A non-2xx
// response or transport failure is an error; a 2xx response with zero
// streams is a valid empty result and must not be conflated with failure.
func (p *AddonProvider) fetchStreams(ctx context.Context, url string) ([]models.StreamRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		Streams []models.StreamRecord `json:"streams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.name, err)
	}

	p.logger.Debug("Fetched streams", zap.Int("count", len(result.Streams)))

	return result.Streams, nil
}
