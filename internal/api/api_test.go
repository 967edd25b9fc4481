// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/interactions"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/recommendtest"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type fakeStats struct {
	stats *interactions.Stats
	err   error
}

func (f *fakeStats) Stats(context.Context) (*interactions.Stats, error) {
	return f.stats, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func event(id string, days int, genres ...string) recommend.Event {
	return recommend.Event{
		ID:       id,
		Title:    strings.ToUpper(id),
		Genres:   genres,
		VenueID:  "venue-1",
		Capacity: 500,
		StartsAt: testNow.Add(time.Duration(days) * 24 * time.Hour),
		Status:   recommend.StatusPublished,
	}
}

type testEnv struct {
	store   *recommendtest.MemoryStore
	logger  *recommendtest.RecordingLogger
	handler http.Handler
}

func newTestEnv(t *testing.T, deps Dependencies) *testEnv {
	t.Helper()
	store := recommendtest.NewMemoryStore()
	store.AddEvents(
		event("source", 5, "rock", "indie"),
		event("match", 10, "rock"),
		event("other", 12, "jazz"),
	)
	logger := &recommendtest.RecordingLogger{}

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store.Collaborators(), zerolog.Nop(),
		recommend.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if deps.Recommender == nil {
		deps.Recommender = engine
	}
	if deps.Interactions == nil {
		deps.Interactions = logger
	}
	if deps.DB == nil {
		deps.DB = fakePinger{}
	}

	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://tickets.example"},
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost},
		RateLimitDisabled:  true,
	})
	return &testEnv{
		store:   store,
		logger:  logger,
		handler: NewRouter(NewHandler(deps), mw).Handler(),
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

// ========================================
// Recommendations
// ========================================

func TestRecommendationEndpoints(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
		wantMode recommend.Mode
	}{
		{name: "post trending", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":"trending"}`, wantCode: http.StatusOK, wantMode: recommend.ModeTrending},
		{name: "post similar", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":"similar","event_id":"source","limit":5}`, wantCode: http.StatusOK, wantMode: recommend.ModeSimilar},
		{name: "post similar without event id", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":"similar"}`, wantCode: http.StatusBadRequest, wantErr: ErrCodeBadRequest},
		{name: "post unknown mode", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":"popular"}`, wantCode: http.StatusBadRequest, wantErr: ErrCodeValidationFailed},
		{name: "post limit out of range", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":"trending","limit":101}`, wantCode: http.StatusBadRequest, wantErr: ErrCodeValidationFailed},
		{name: "post malformed body", method: http.MethodPost, path: "/api/v1/recommendations",
			body: `{"mode":`, wantCode: http.StatusBadRequest, wantErr: ErrCodeBadRequest},
		{name: "post empty body", method: http.MethodPost, path: "/api/v1/recommendations",
			wantCode: http.StatusBadRequest, wantErr: ErrCodeBadRequest},
		{name: "get personalized anonymous", method: http.MethodGet, path: "/api/v1/recommendations/personalized",
			wantCode: http.StatusOK, wantMode: recommend.ModePersonalized},
		{name: "get trending", method: http.MethodGet, path: "/api/v1/recommendations/trending?limit=3",
			wantCode: http.StatusOK, wantMode: recommend.ModeTrending},
		{name: "get forecast", method: http.MethodGet, path: "/api/v1/recommendations/forecast",
			wantCode: http.StatusOK, wantMode: recommend.ModeDemandForecast},
		{name: "get bad limit", method: http.MethodGet, path: "/api/v1/recommendations/trending?limit=ten",
			wantCode: http.StatusBadRequest, wantErr: ErrCodeBadRequest},
		{name: "get similar", method: http.MethodGet, path: "/api/v1/events/source/similar",
			wantCode: http.StatusOK, wantMode: recommend.ModeSimilar},
		{name: "get similar unknown event", method: http.MethodGet, path: "/api/v1/events/missing/similar",
			wantCode: http.StatusNotFound, wantErr: ErrCodeNotFound},
		{name: "get also attended", method: http.MethodGet, path: "/api/v1/events/source/also-attended",
			wantCode: http.StatusOK, wantMode: recommend.ModeCollaborative},
		{name: "get also attended unknown event", method: http.MethodGet, path: "/api/v1/events/missing/also-attended",
			wantCode: http.StatusNotFound, wantErr: ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if body.Success || body.Error == nil || body.Error.Code != tt.wantErr {
					t.Fatalf("error = %+v, want code %s", body.Error, tt.wantErr)
				}
				return
			}
			var resp recommend.Response
			if err := json.Unmarshal(body.Data, &resp); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if resp.Mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", resp.Mode, tt.wantMode)
			}
			if resp.Results == nil {
				t.Error("results must be an empty list, not null")
			}
		})
	}
}

func TestSimilarEndpointRanksMatches(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	rec, body := env.do(t, http.MethodGet, "/api/v1/events/source/similar?limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp recommend.Response
	if err := json.Unmarshal(body.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Event.ID != "match" {
		t.Fatalf("results = %+v, want [match]", resp.Results)
	}
}

func TestRecommendationStoreFailureIsServiceUnavailable(t *testing.T) {
	env := newTestEnv(t, Dependencies{})
	env.store.FailOn(recommendtest.MethodListCompletedPurchasesInWindow, errors.New("disk on fire"))

	rec, body := env.do(t, http.MethodGet, "/api/v1/recommendations/trending", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body.Error == nil || body.Error.Code != ErrCodeServiceUnavailable {
		t.Fatalf("error = %+v", body.Error)
	}
	if strings.Contains(body.Error.Message, "disk on fire") {
		t.Error("internal error detail leaked to the client")
	}
}

type stubRecommender struct{ err error }

func (s stubRecommender) Recommend(context.Context, recommend.Request) (*recommend.Response, error) {
	return nil, s.err
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	env := newTestEnv(t, Dependencies{Recommender: stubRecommender{err: errors.New("boom")}})

	rec, body := env.do(t, http.MethodGet, "/api/v1/recommendations/trending", "")
	if rec.Code != http.StatusInternalServerError || body.Error.Code != ErrCodeInternalError {
		t.Fatalf("got %d %+v, want 500 INTERNAL_ERROR", rec.Code, body.Error)
	}
}

// ========================================
// Interactions
// ========================================

func TestLogInteraction(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	rec, body := env.do(t, http.MethodPost, "/api/v1/interactions",
		`{"user_id":"u1","event_id":"match","interaction_type":"clicked","source":"similar"}`)
	if rec.Code != http.StatusAccepted || !body.Success {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	entries := env.logger.Entries()
	if len(entries) != 1 {
		t.Fatalf("logged %d interactions, want 1", len(entries))
	}
	got := entries[0]
	if got.UserID != "u1" || got.EventID != "match" || got.Type != recommend.InteractionClicked || got.Source != "similar" {
		t.Errorf("logged %+v", got)
	}
}

func TestLogInteractionRejectsInvalidBodies(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown type", `{"user_id":"u1","event_id":"e1","interaction_type":"purchased"}`, ErrCodeValidationFailed},
		{"missing user", `{"event_id":"e1","interaction_type":"viewed"}`, ErrCodeValidationFailed},
		{"malformed", `not json`, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodPost, "/api/v1/interactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body.Error == nil || body.Error.Code != tt.wantErr {
				t.Fatalf("error = %+v, want %s", body.Error, tt.wantErr)
			}
		})
	}
	if n := len(env.logger.Entries()); n != 0 {
		t.Errorf("logged %d interactions for invalid bodies", n)
	}
}

func TestInteractionStats(t *testing.T) {
	stats := &interactions.Stats{
		Total:    3,
		ByType:   map[string]int{"viewed": 2, "clicked": 1},
		BySource: map[string]int{"trending": 3},
	}
	env := newTestEnv(t, Dependencies{Stats: &fakeStats{stats: stats}})

	rec, body := env.do(t, http.MethodGet, "/api/v1/interactions/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got interactions.Stats
	if err := json.Unmarshal(body.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || got.ByType["viewed"] != 2 || got.BySource["trending"] != 3 {
		t.Errorf("stats = %+v", got)
	}
}

func TestInteractionStatsUnavailable(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, Dependencies{})
		rec, _ := env.do(t, http.MethodGet, "/api/v1/interactions/stats", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})
	t.Run("store error", func(t *testing.T) {
		env := newTestEnv(t, Dependencies{Stats: &fakeStats{err: errors.New("closed")}})
		rec, _ := env.do(t, http.MethodGet, "/api/v1/interactions/stats", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})
}

// ========================================
// Health, metrics and middleware
// ========================================

func TestHealthEndpoints(t *testing.T) {
	ok := newTestEnv(t, Dependencies{})
	if rec, _ := ok.do(t, http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("live = %d", rec.Code)
	}
	if rec, _ := ok.do(t, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready = %d", rec.Code)
	}

	down := newTestEnv(t, Dependencies{DB: fakePinger{err: errors.New("gone")}})
	rec, body := down.do(t, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable || body.Error == nil {
		t.Errorf("ready with failing db = %d %+v", rec.Code, body.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, Dependencies{})
	env.do(t, http.MethodGet, "/api/v1/recommendations/trending", "")

	rec, _ := env.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output is missing api_requests_total")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/missing/similar", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("response header = %q, want req-123", got)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.RequestID != "req-123" || body.Meta.RequestID != "req-123" {
		t.Errorf("request id missing from envelope: %+v %+v", body.Error, body.Meta)
	}

	_, generated := env.do(t, http.MethodGet, "/health/live", "")
	if generated.Meta == nil || generated.Meta.RequestID == "" {
		t.Error("expected a generated request id")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations", nil)
	req.Header.Set("Origin", "https://tickets.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://tickets.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestRateLimitByIP(t *testing.T) {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})
	handler := mw.RateLimitByIP()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [204 204 429]", codes)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, Dependencies{})
	rec, body := env.do(t, http.MethodGet, "/api/v2/nothing", "")
	if rec.Code != http.StatusNotFound || body.Error == nil || body.Error.Code != ErrCodeNotFound {
		t.Errorf("got %d %+v", rec.Code, body.Error)
	}
}
