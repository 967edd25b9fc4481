// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/interactions"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

// Recommender answers recommendation requests.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// StatsReader reports aggregate interaction counts.
type StatsReader interface {
	Stats(ctx context.Context) (*interactions.Stats, error)
}

// Pinger checks a dependency for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators behind the HTTP surface. Interactions
// and Stats may be nil when the interaction pipeline is disabled.
type Dependencies struct {
	Recommender  Recommender
	Interactions recommend.InteractionLogger
	Stats        StatsReader
	DB           Pinger
}

// Handler holds the HTTP handlers.
type Handler struct {
	deps      Dependencies
	startTime time.Time
}

// NewHandler creates a handler over deps.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps, startTime: time.Now()}
}

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var body RecommendationRequest
	if err := decodeBody(w, r, &body); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.serveRecommendation(rw, r, &body)
}

// Personalized handles GET /api/v1/recommendations/personalized.
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, recommend.ModePersonalized, "")
}

// Trending handles GET /api/v1/recommendations/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, recommend.ModeTrending, "")
}

// Forecast handles GET /api/v1/recommendations/forecast.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, recommend.ModeDemandForecast, "")
}

// Similar handles GET /api/v1/events/{eventID}/similar.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, recommend.ModeSimilar, chi.URLParam(r, "eventID"))
}

// AlsoAttended handles GET /api/v1/events/{eventID}/also-attended.
func (h *Handler) AlsoAttended(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, recommend.ModeCollaborative, chi.URLParam(r, "eventID"))
}

func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request, mode recommend.Mode, eventID string) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	limit, err := parseLimit(q)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.serveRecommendation(rw, r, &RecommendationRequest{
		Mode:    mode.String(),
		UserID:  q.Get("user_id"),
		EventID: eventID,
		Limit:   limit,
	})
}

func (h *Handler) serveRecommendation(rw *ResponseWriter, r *http.Request, body *RecommendationRequest) {
	if verr := validation.ValidateStruct(body); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.deps.Recommender.Recommend(r.Context(), body.ToEngineRequest())
	if err != nil {
		writeEngineError(rw, r, err)
		return
	}
	rw.Success(resp)
}

// writeEngineError maps engine error kinds onto HTTP statuses.
func writeEngineError(rw *ResponseWriter, r *http.Request, err error) {
	switch recommend.KindOf(err) {
	case recommend.KindInvalidRequest:
		rw.BadRequest(err.Error())
	case recommend.KindNotFound:
		rw.NotFound(err.Error())
	case recommend.KindServiceUnavailable:
		rw.ServiceUnavailable("recommendations are temporarily unavailable")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unclassified recommendation error")
		rw.InternalError("internal error")
	}
}

// LogInteraction handles POST /api/v1/interactions. The interaction is
// queued without waiting, so the response is always 202 once accepted.
func (h *Handler) LogInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Interactions == nil {
		rw.ServiceUnavailable("interaction logging is disabled")
		return
	}

	var body InteractionRequest
	if err := decodeBody(w, r, &body); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	h.deps.Interactions.LogInteraction(body.ToInteraction())
	rw.Accepted(map[string]string{"status": "accepted"})
}

// InteractionStats handles GET /api/v1/interactions/stats.
func (h *Handler) InteractionStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Stats == nil {
		rw.ServiceUnavailable("interaction storage is disabled")
		return
	}

	stats, err := h.deps.Stats.Stats(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read interaction stats")
		rw.ServiceUnavailable("interaction stats are temporarily unavailable")
		return
	}
	rw.Success(stats)
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports 200 only when the database answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	dbConnected := h.deps.DB != nil && h.deps.DB.Ping(r.Context()) == nil
	data := map[string]interface{}{
		"database_connected": dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}
	if !dbConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "not ready", data)
		return
	}
	rw.Success(data)
}

// decodeBody reads a single JSON object from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body is too large")
		}
		return errors.New("request body must be valid JSON")
	}
	return nil
}
