// Package signalapi exposes the signal pipelines over HTTP: location
// extraction, image verification, and feed triage.
package signalapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/feed"
	"github.com/linnemanlabs/beacon/internal/geolocate"
	"github.com/linnemanlabs/beacon/internal/imagecheck"
)

// LocationService defines the location-resolution operation the API needs.
type LocationService interface {
	Extract(ctx context.Context, description string) geolocate.Extraction
}

// ImageService defines the image-verification operation the API needs.
type ImageService interface {
	Verify(ctx context.Context, url string) imagecheck.Verification
}

// FeedService defines the feed triage operations the API needs.
type FeedService interface {
	Fetch(ctx context.Context, disasterID string, tags []string) ([]feed.Report, error)
	Alerts(ctx context.Context, disasterID string, tags []string) ([]feed.Report, error)
	Sentiment(ctx context.Context, disasterID string, tags []string) ([]feed.AnnotatedReport, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	locations LocationService
	images    ImageService
	feeds     FeedService
}

// New creates a new API handler.
func New(logger log.Logger, locations LocationService, images ImageService, feeds FeedService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if locations == nil {
		panic(xerrors.New("location service is required"))
	}
	if images == nil {
		panic(xerrors.New("image service is required"))
	}
	if feeds == nil {
		panic(xerrors.New("feed service is required"))
	}
	return &API{
		logger:    logger,
		locations: locations,
		images:    images,
		feeds:     feeds,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/location", a.handleExtractLocation)
		r.Post("/image", a.handleVerifyImage)
		r.Get("/disasters/{id}/reports", a.handleReports)
		r.Get("/disasters/{id}/alerts", a.handleAlerts)
		r.Get("/disasters/{id}/sentiment", a.handleSentiment)
	})
}

func (a *API) handleExtractLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, `{"error":"description is required"}`, http.StatusBadRequest)
		return
	}

	result := a.locations.Extract(r.Context(), req.Description)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("beacon.location.method", string(result.Method)),
		attribute.Float64("beacon.location.confidence", result.Confidence),
	)

	writeJSON(w, result)
}

func (a *API) handleVerifyImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, `{"error":"url is required"}`, http.StatusBadRequest)
		return
	}

	result := a.images.Verify(r.Context(), req.URL)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("beacon.image.status", string(result.Status)))

	writeJSON(w, result)
}

func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	a.serveFeed(w, r, func(ctx context.Context, id string, tags []string) (any, error) {
		return a.feeds.Fetch(ctx, id, tags)
	})
}

func (a *API) handleAlerts(w http.ResponseWriter, r *http.Request) {
	a.serveFeed(w, r, func(ctx context.Context, id string, tags []string) (any, error) {
		return a.feeds.Alerts(ctx, id, tags)
	})
}

func (a *API) handleSentiment(w http.ResponseWriter, r *http.Request) {
	a.serveFeed(w, r, func(ctx context.Context, id string, tags []string) (any, error) {
		return a.feeds.Sentiment(ctx, id, tags)
	})
}

func (a *API) serveFeed(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string, tags []string) (any, error)) {
	id := chi.URLParam(r, "id")
	tags := parseTags(r.URL.Query().Get("tags"))

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("beacon.disaster.id", id))

	result, err := fn(r.Context(), id, tags)
	if err != nil {
		a.logger.Error(r.Context(), err, "feed operation failed", "disaster_id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// parseTags splits a comma-separated tag list, dropping empty segments.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
