// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Engine dispatches requests to the ranking components. It holds only
// configuration and store handles and is safe for concurrent use.
type Engine struct {
	config       *Config
	logger       zerolog.Logger
	catalog      Catalog
	history      HistoryStore
	purchases    PurchaseStore
	interactions InteractionLogger
	profiles     *ProfileBuilder
	forecaster   *Forecaster
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now. Tests use it to pin the trailing windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over the given collaborators.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, c Collaborators, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if c.Catalog == nil || c.Profiles == nil || c.History == nil || c.Purchases == nil {
		return nil, errors.New("catalog, profile, history and purchase stores are required")
	}

	logger = logger.With().Str("component", "recommend").Logger()
	cfg = cfg.Clone()

	e := &Engine{
		config:       cfg,
		logger:       logger,
		catalog:      c.Catalog,
		history:      c.History,
		purchases:    c.Purchases,
		interactions: c.Interactions,
		profiles:     NewProfileBuilder(c, cfg, logger),
		forecaster:   NewForecaster(c.Catalog, cfg),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend answers req. Errors are *Error values; an empty result list is
// never an error.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := e.recommend(ctx, req)

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	count := 0
	if resp != nil {
		count = len(resp.Results)
	}
	metrics.RecordRecommendation(req.Mode.String(), outcome, time.Since(start), count)

	log := logging.WithContextIDs(ctx, e.logger).With().
		Str("mode", req.Mode.String()).
		Dur("duration", time.Since(start)).
		Logger()
	if err != nil {
		if KindOf(err) == KindServiceUnavailable {
			log.Error().Err(err).Msg("recommendation failed")
		} else {
			log.Debug().Err(err).Msg("recommendation rejected")
		}
		return nil, err
	}
	log.Debug().Int("results", count).Msg("recommendation served")

	e.logImpressions(req, resp)
	return resp, nil
}

func (e *Engine) recommend(ctx context.Context, req Request) (*Response, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout)
	defer cancel()

	now := e.now()
	k := e.limit(req)

	resp := &Response{Mode: req.Mode, GeneratedAt: now}
	var err error

	switch req.Mode {
	case ModePersonalized:
		resp.Results, resp.Profile, err = e.personalized(ctx, req.UserID, now, k)
	case ModeSimilar:
		resp.Results, err = e.similar(ctx, req.EventID, now, k)
	case ModeCollaborative:
		resp.Results, err = e.collaborative(ctx, req.EventID, now, k)
	case ModeTrending:
		resp.Results, err = e.trending(ctx, now, k)
	case ModeDemandForecast:
		resp.Results, err = e.demandForecast(ctx, now, k)
	}
	if err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []RankedResult{}
	}
	return resp, nil
}

func (e *Engine) validate(req Request) error {
	const op = "recommend"
	if !req.Mode.Valid() {
		return invalidRequest(op, "unsupported mode %q", req.Mode)
	}
	if req.Mode.RequiresEventID() && req.EventID == "" {
		return invalidRequest(op, "mode %q requires event_id", req.Mode)
	}
	if req.Limit < 0 || req.Limit > e.config.Limits.MaxK {
		return invalidRequest(op, "limit must be between 1 and %d", e.config.Limits.MaxK)
	}
	return nil
}

// limit returns the result size for req. Zero means unbounded, which only
// the forecaster uses by default.
func (e *Engine) limit(req Request) int {
	if req.Limit > 0 {
		return req.Limit
	}
	return e.config.topK(req.Mode)
}

func (e *Engine) personalized(ctx context.Context, userID string, now time.Time, k int) ([]RankedResult, *ProfileSummary, error) {
	model, err := e.profiles.Build(ctx, userID)
	if err != nil {
		return nil, nil, classify("build profile", err)
	}

	candidates, err := e.catalog.ListUpcomingPublished(ctx, now, e.config.Limits.CandidateLimit)
	if err != nil {
		return nil, nil, unavailable("list upcoming events", err)
	}

	results := ScoreAffinity(model, candidates, k)
	return results, model.Summary(e.config.Limits.ProfileTopGenres), nil
}

func (e *Engine) similar(ctx context.Context, eventID string, now time.Time, k int) ([]RankedResult, error) {
	source, err := e.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, classify("get source event", err)
	}

	candidates, err := e.catalog.ListUpcomingPublished(ctx, now, e.config.Limits.CandidateLimit)
	if err != nil {
		return nil, unavailable("list upcoming events", err)
	}

	return RankSimilar(source, candidates, k), nil
}

func (e *Engine) collaborative(ctx context.Context, eventID string, now time.Time, k int) ([]RankedResult, error) {
	if _, err := e.catalog.GetEvent(ctx, eventID); err != nil {
		return nil, classify("get source event", err)
	}

	users, err := e.history.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, unavailable("list attendees", err)
	}
	if len(users) == 0 {
		return []RankedResult{}, nil
	}

	records, err := e.history.ListAttendanceForUsers(ctx, users, eventID)
	if err != nil {
		return nil, unavailable("list co-attendance", err)
	}

	counts := TallyCoAttendance(eventID, records, k)
	results, err := e.attach(ctx, counts, now, func(r *RankedResult, n int) {
		r.CoAttendance = &n
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) trending(ctx context.Context, now time.Time, k int) ([]RankedResult, error) {
	start := now.Add(-e.config.Trending.Window)

	purchases, err := e.purchases.ListCompletedPurchasesInWindow(ctx, start, now)
	if err != nil {
		return nil, unavailable("list purchases in window", err)
	}

	counts := TallyVelocity(purchases, start, now, k)
	return e.attach(ctx, counts, now, func(r *RankedResult, n int) {
		r.SalesVelocity = &n
	})
}

func (e *Engine) demandForecast(ctx context.Context, now time.Time, k int) ([]RankedResult, error) {
	targets, err := e.catalog.ListUpcomingWithin(ctx, now, now.Add(e.config.Forecast.Horizon))
	if err != nil {
		return nil, unavailable("list forecast targets", err)
	}

	published := make([]Event, 0, len(targets))
	for i := range targets {
		if targets[i].IsUpcomingPublished(now) {
			published = append(published, targets[i])
		}
	}
	if k > 0 && len(published) > k {
		published = published[:k]
	}

	results, err := e.forecaster.Forecast(ctx, published, now)
	if err != nil {
		return nil, unavailable("forecast demand", err)
	}
	return results, nil
}

// attach fetches details for the ranked IDs, keeps upcoming published
// events in rank order, and annotates each with its count.
func (e *Engine) attach(ctx context.Context, counts []EventCount, now time.Time, annotate func(*RankedResult, int)) ([]RankedResult, error) {
	if len(counts) == 0 {
		return []RankedResult{}, nil
	}

	ids := make([]string, len(counts))
	for i, c := range counts {
		ids[i] = c.EventID
	}

	events, err := e.catalog.GetEvents(ctx, ids)
	if err != nil {
		return nil, unavailable("get ranked events", err)
	}
	byID := make(map[string]Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	results := make([]RankedResult, 0, len(counts))
	for _, c := range counts {
		ev, ok := byID[c.EventID]
		if !ok || !ev.IsUpcomingPublished(now) {
			continue
		}
		r := RankedResult{
			Event:   ev,
			Score:   float64(c.Count),
			Reasons: []string{},
		}
		annotate(&r, c.Count)
		results = append(results, r)
	}
	return results, nil
}

// logImpressions records a "viewed" interaction per result. The logger is
// fire-and-forget so this never delays the response.
func (e *Engine) logImpressions(req Request, resp *Response) {
	if !e.config.LogImpressions || e.interactions == nil || req.UserID == "" {
		return
	}
	now := e.now()
	for i := range resp.Results {
		e.interactions.LogInteraction(Interaction{
			UserID:     req.UserID,
			EventID:    resp.Results[i].Event.ID,
			Type:       InteractionViewed,
			Source:     req.Mode.String(),
			OccurredAt: now,
		})
	}
}
