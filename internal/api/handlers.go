package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zaratek/streamscout/internal/availability"
	"github.com/zaratek/streamscout/internal/database"
	"github.com/zaratek/streamscout/internal/metadata"
	"github.com/zaratek/streamscout/internal/models"
)

// BatchResolver resolves a batch of content items. Satisfied by both the
// plain service and the cache-aside wrapper.
type BatchResolver interface {
	ResolveBatch(ctx context.Context, items []models.ContentRef, requiredCount int, timeout time.Duration) []models.AnnotatedItem
}

// Server exposes the resolution engine over HTTP.
type Server struct {
	svc           *availability.Service
	batch         BatchResolver
	reports       *database.AvailabilityStore // nil when persistence is disabled
	meta          *metadata.TMDBClient        // nil when no metadata key is configured
	batchTimeout  time.Duration
	requiredCount int
	staleAfter    time.Duration
	logger        *zap.Logger
}

// NewServer wires the HTTP layer.
func NewServer(svc *availability.Service, batch BatchResolver, reports *database.AvailabilityStore, meta *metadata.TMDBClient, batchTimeout time.Duration, requiredCount int, staleAfter time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:           svc,
		batch:         batch,
		reports:       reports,
		meta:          meta,
		batchTimeout:  batchTimeout,
		requiredCount: requiredCount,
		staleAfter:    staleAfter,
		logger:        logger,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/movie/{imdbID}", s.handleMovie).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/series/{imdbID}/{season}/{episode}", s.handleSeries).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/batch", s.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/availability/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/api/availability/tmdb/{mediaType}/{tmdbID}", s.handleTMDB).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	imdbID := mux.Vars(r)["imdbID"]
	if imdbID == "" {
		respondError(w, http.StatusBadRequest, "missing imdb id")
		return
	}

	status := s.svc.ResolveMovie(r.Context(), imdbID)
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	imdbID := vars["imdbID"]

	season, err := strconv.Atoi(vars["season"])
	if err != nil || season < 0 {
		respondError(w, http.StatusBadRequest, "invalid season")
		return
	}
	episode, err := strconv.Atoi(vars["episode"])
	if err != nil || episode < 0 {
		respondError(w, http.StatusBadRequest, "invalid episode")
		return
	}

	status := s.svc.ResolveTV(r.Context(), imdbID, season, episode)
	respondJSON(w, http.StatusOK, status)
}

type batchRequest struct {
	Items         []models.ContentRef `json:"items"`
	RequiredCount int                 `json:"requiredCount"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "items is required")
		return
	}

	required := req.RequiredCount
	if required <= 0 {
		required = s.requiredCount
	}

	results := s.batch.ResolveBatch(r.Context(), req.Items, required, s.batchTimeout)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": results,
		"count": len(results),
	})
}

// handleTMDB resolves a TMDB id through the metadata upstream to its IMDb
// id first, then runs the normal resolution. Series default to S01E01 when
// season/episode query parameters are absent.
func (s *Server) handleTMDB(w http.ResponseWriter, r *http.Request) {
	if s.meta == nil {
		respondError(w, http.StatusNotFound, "metadata lookup is not configured")
		return
	}

	vars := mux.Vars(r)
	mediaType := vars["mediaType"]
	tmdbID, err := strconv.Atoi(vars["tmdbID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tmdb id")
		return
	}

	switch mediaType {
	case models.MediaTypeMovie:
		imdbID, err := s.meta.GetMovieExternalID(r.Context(), tmdbID)
		if err != nil {
			s.logger.Warn("Metadata lookup failed", zap.Int("tmdb_id", tmdbID), zap.Error(err))
			respondError(w, http.StatusBadGateway, "metadata lookup failed")
			return
		}
		respondJSON(w, http.StatusOK, s.svc.ResolveMovie(r.Context(), imdbID))
	case models.MediaTypeSeries:
		imdbID, err := s.meta.GetSeriesExternalID(r.Context(), tmdbID)
		if err != nil {
			s.logger.Warn("Metadata lookup failed", zap.Int("tmdb_id", tmdbID), zap.Error(err))
			respondError(w, http.StatusBadGateway, "metadata lookup failed")
			return
		}
		season := queryInt(r, "season", 1)
		episode := queryInt(r, "episode", 1)
		respondJSON(w, http.StatusOK, s.svc.ResolveTV(r.Context(), imdbID, season, episode))
	default:
		respondError(w, http.StatusBadRequest, "media type must be movie or series")
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return def
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		respondError(w, http.StatusNotFound, "history store is not configured")
		return
	}

	report, err := s.reports.GenerateReport(r.Context(), s.staleAfter)
	if err != nil {
		s.logger.Error("Failed to generate availability report", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
