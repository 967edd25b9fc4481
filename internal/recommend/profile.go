// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// BuildInterestModel merges explicit preferences with attended events and
// completed purchases. prefs may be nil. attended holds the event details of
// the attendance records in the history window.
func BuildInterestModel(prefs *PreferenceProfile, attended []Event, purchases []PurchaseRecord, fallbackSpend float64) *InterestModel {
	model := NewInterestModel(fallbackSpend)

	if prefs != nil {
		for _, genre := range uniqueGenres(prefs.FavoriteGenres) {
			model.GenreWeights[genre] += ExplicitGenreWeight
		}
	}

	for i := range attended {
		for _, genre := range uniqueGenres(attended[i].Genres) {
			model.GenreWeights[genre] += AttendedGenreWeight
		}
		if attended[i].VenueID != "" {
			model.VenueWeights[attended[i].VenueID] += AttendedVenueWeight
		}
	}
	model.AttendedCount = len(attended)

	var total float64
	var completed int
	for _, p := range purchases {
		if p.Status != PurchaseCompleted {
			continue
		}
		total += p.TotalAmount
		completed++
	}
	if completed > 0 {
		model.AverageSpend = total / float64(completed)
		model.SpendFallback = false
	}

	return model
}

// TopGenres returns the n heaviest genres, ties by genre name ascending.
func (m *InterestModel) TopGenres(n int) []GenreWeight {
	out := make([]GenreWeight, 0, len(m.GenreWeights))
	for genre, weight := range m.GenreWeights {
		out = append(out, GenreWeight{Genre: genre, Weight: weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Genre < out[j].Genre
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary returns the profile block of a personalized response.
func (m *InterestModel) Summary(topGenres int) *ProfileSummary {
	return &ProfileSummary{
		TopGenres:     m.TopGenres(topGenres),
		AverageSpend:  m.AverageSpend,
		AttendedCount: m.AttendedCount,
	}
}

// ProfileBuilder loads the signals behind an InterestModel from the stores.
type ProfileBuilder struct {
	profiles     ProfileStore
	history      HistoryStore
	catalog      Catalog
	purchases    PurchaseStore
	historyLimit int
	fallback     float64
	logger       zerolog.Logger
}

// NewProfileBuilder creates a builder over the given stores.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileBuilder(c Collaborators, cfg *Config, logger zerolog.Logger) *ProfileBuilder {
	return &ProfileBuilder{
		profiles:     c.Profiles,
		history:      c.History,
		catalog:      c.Catalog,
		purchases:    c.Purchases,
		historyLimit: cfg.Limits.AttendanceHistory,
		fallback:     cfg.Fallbacks.AverageSpend,
		logger:       logger,
	}
}

// Build returns the interest model for userID. An empty userID is the
// anonymous path and yields an empty model without touching any store.
//
// Profile and attendance lookups are required. A failing purchase store
// degrades to the fallback spend.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) (*InterestModel, error) {
	if userID == "" {
		return NewInterestModel(b.fallback), nil
	}

	prefs, err := b.profiles.GetPreferences(ctx, userID)
	if err != nil {
		return nil, unavailable("get preferences", err)
	}

	attended, err := b.attendedEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	purchases, err := b.purchases.ListCompletedPurchases(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, classify("list completed purchases", ctx.Err())
		}
		b.logger.Warn().Err(err).Str("user_id", userID).
			Float64("fallback_spend", b.fallback).
			Msg("purchase store unavailable, using fallback average spend")
		metrics.RecordSpendFallback("purchase_store_error")
		purchases = nil
	}

	model := BuildInterestModel(prefs, attended, purchases, b.fallback)
	if model.SpendFallback && err == nil {
		metrics.RecordSpendFallback("no_purchases")
	}
	return model, nil
}

// attendedEvents resolves the user's recent attendance records to events,
// keeping record order. Duplicate records count once per record.
func (b *ProfileBuilder) attendedEvents(ctx context.Context, userID string) ([]Event, error) {
	if b.historyLimit == 0 {
		return nil, nil
	}

	records, err := b.history.ListAttendance(ctx, userID, b.historyLimit)
	if err != nil {
		return nil, unavailable("list attendance", err)
	}
	if len(records) > b.historyLimit {
		records = records[:b.historyLimit]
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.EventID]; ok {
			continue
		}
		seen[r.EventID] = struct{}{}
		ids = append(ids, r.EventID)
	}

	events, err := b.catalog.GetEvents(ctx, ids)
	if err != nil {
		return nil, unavailable("get attended events", err)
	}
	byID := make(map[string]Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	attended := make([]Event, 0, len(records))
	for _, r := range records {
		if e, ok := byID[r.EventID]; ok {
			attended = append(attended, e)
		}
	}
	return attended, nil
}
