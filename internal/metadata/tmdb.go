package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBClient resolves internal metadata identifiers to the IMDb-style
// external identifiers the indexing providers key on. The metadata service
// is an opaque upstream; only the id mapping is consumed here.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTMDBClient creates a metadata client.
func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		apiKey:  apiKey,
		baseURL: tmdbBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type externalIDs struct {
	IMDbID string `json:"imdb_id"`
}

// GetMovieExternalID returns the IMDb id for a TMDB movie id.
func (c *TMDBClient) GetMovieExternalID(ctx context.Context, tmdbID int) (string, error) {
	return c.fetchExternalID(ctx, fmt.Sprintf("%s/movie/%d/external_ids?api_key=%s", c.baseURL, tmdbID, c.apiKey))
}

// GetSeriesExternalID returns the IMDb id for a TMDB series id.
func (c *TMDBClient) GetSeriesExternalID(ctx context.Context, tmdbID int) (string, error) {
	return c.fetchExternalID(ctx, fmt.Sprintf("%s/tv/%d/external_ids?api_key=%s", c.baseURL, tmdbID, c.apiKey))
}

func (c *TMDBClient) fetchExternalID(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("metadata service returned status %d: %s", resp.StatusCode, string(body))
	}

	var ids externalIDs
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return "", fmt.Errorf("decoding metadata response: %w", err)
	}

	if ids.IMDbID == "" {
		return "", fmt.Errorf("no external id for this title")
	}

	return ids.IMDbID, nil
}
