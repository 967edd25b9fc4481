// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// demoEvent describes a seeded event relative to the seeding time.
type demoEvent struct {
	id, title, venue string
	genres           []string
	offset           time.Duration
	capacity, sold   int
	priceMin         float64
	priceMax         float64
	status           recommend.EventStatus
}

var demoEvents = []demoEvent{
	{"evt-past-rock-1", "Amplified Nights", "venue-arena", []string{"rock"}, -120 * 24 * time.Hour, 1000, 920, 45, 120, recommend.StatusPublished},
	{"evt-past-rock-2", "Garage Revival", "venue-club", []string{"rock", "indie"}, -60 * 24 * time.Hour, 300, 240, 25, 40, recommend.StatusPublished},
	{"evt-past-jazz-1", "Blue Hour Quartet", "venue-hall", []string{"jazz"}, -90 * 24 * time.Hour, 400, 180, 35, 80, recommend.StatusPublished},
	{"evt-past-electronic-1", "Warehouse Pulse", "venue-warehouse", []string{"electronic"}, -30 * 24 * time.Hour, 800, 760, 30, 60, recommend.StatusPublished},
	{"evt-rock-1", "Stadium Thunder", "venue-arena", []string{"rock"}, 10 * 24 * time.Hour, 1000, 150, 55, 150, recommend.StatusPublished},
	{"evt-rock-2", "Basement Sessions", "venue-club", []string{"rock", "indie"}, 20 * 24 * time.Hour, 300, 210, 20, 35, recommend.StatusPublished},
	{"evt-jazz-1", "Midnight Standards", "venue-hall", []string{"jazz"}, 5 * 24 * time.Hour, 400, 90, 40, 95, recommend.StatusPublished},
	{"evt-jazz-2", "Brass and Brunch", "venue-hall", []string{"jazz", "soul"}, 45 * 24 * time.Hour, 250, 30, 30, 60, recommend.StatusPublished},
	{"evt-electronic-1", "Circuit Bloom", "venue-warehouse", []string{"electronic"}, 12 * 24 * time.Hour, 800, 500, 35, 70, recommend.StatusPublished},
	{"evt-indie-1", "Quiet Loud", "venue-club", []string{"indie"}, 25 * 24 * time.Hour, 300, 60, 18, 30, recommend.StatusPublished},
	{"evt-draft-1", "Unannounced Headliner", "venue-arena", []string{"rock"}, 30 * 24 * time.Hour, 1000, 0, 80, 200, recommend.StatusDraft},
	{"evt-cancelled-1", "Rained Out", "venue-park", []string{"folk"}, 15 * 24 * time.Hour, 500, 100, 25, 50, recommend.StatusCancelled},
}

// SeedDemoData loads a small demo catalog with users, attendance and
// purchases. It does nothing when the events table already has rows.
func (db *DB) SeedDemoData(ctx context.Context, now time.Time) error {
	var count int
	qctx, cancel := db.queryContext(ctx)
	err := db.conn.QueryRowContext(qctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	cancel()
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("events", count).Msg("Catalog not empty, skipping demo seed")
		return nil
	}

	now = now.UTC().Truncate(time.Second)
	for _, d := range demoEvents {
		minP, maxP := d.priceMin, d.priceMax
		e := &recommend.Event{
			ID:          d.id,
			Title:       d.title,
			Genres:      d.genres,
			VenueID:     d.venue,
			Capacity:    d.capacity,
			TicketsSold: d.sold,
			Price:       &recommend.PriceRange{Min: &minP, Max: &maxP},
			StartsAt:    now.Add(d.offset),
			Status:      d.status,
		}
		if err := db.UpsertEvent(ctx, e); err != nil {
			return fmt.Errorf("seed event %s: %w", d.id, err)
		}
	}

	maxSpend := 60.0
	profiles := []*recommend.PreferenceProfile{
		{UserID: "user-rocker", FavoriteGenres: []string{"rock"}, PreferredVenues: []string{"venue-club"}},
		{UserID: "user-jazzfan", FavoriteGenres: []string{"jazz", "soul"}, PriceRange: &recommend.PriceRange{Max: &maxSpend}},
	}
	for _, p := range profiles {
		if err := db.UpsertPreferences(ctx, p); err != nil {
			return fmt.Errorf("seed preferences %s: %w", p.UserID, err)
		}
	}

	day := 24 * time.Hour
	attendance := []recommend.AttendanceRecord{
		{UserID: "user-rocker", EventID: "evt-past-rock-1", AttendedAt: now.Add(-120 * day)},
		{UserID: "user-rocker", EventID: "evt-past-rock-2", AttendedAt: now.Add(-60 * day)},
		{UserID: "user-jazzfan", EventID: "evt-past-jazz-1", AttendedAt: now.Add(-90 * day)},
		{UserID: "user-raver", EventID: "evt-past-electronic-1", AttendedAt: now.Add(-30 * day)},
		{UserID: "user-raver", EventID: "evt-past-rock-2", AttendedAt: now.Add(-60 * day)},
		{UserID: "user-rocker", EventID: "evt-rock-1", AttendedAt: now.Add(-2 * day)},
		{UserID: "user-raver", EventID: "evt-rock-1", AttendedAt: now.Add(-2 * day)},
	}
	if err := db.RecordAttendance(ctx, attendance...); err != nil {
		return fmt.Errorf("seed attendance: %w", err)
	}

	purchases := []recommend.PurchaseRecord{
		{ID: "pur-1", UserID: "user-rocker", EventID: "evt-rock-1", TotalAmount: 110, Status: recommend.PurchaseCompleted, CompletedAt: now.Add(-2 * day)},
		{ID: "pur-2", UserID: "user-rocker", EventID: "evt-rock-2", TotalAmount: 40, Status: recommend.PurchaseCompleted, CompletedAt: now.Add(-3 * day)},
		{ID: "pur-3", UserID: "user-raver", EventID: "evt-electronic-1", TotalAmount: 70, Status: recommend.PurchaseCompleted, CompletedAt: now.Add(-1 * day)},
		{ID: "pur-4", UserID: "user-raver", EventID: "evt-electronic-1", TotalAmount: 70, Status: recommend.PurchaseCompleted, CompletedAt: now.Add(-4 * day)},
		{ID: "pur-5", UserID: "user-jazzfan", EventID: "evt-jazz-1", TotalAmount: 45, Status: recommend.PurchaseCompleted, CompletedAt: now.Add(-5 * day)},
		{ID: "pur-6", UserID: "user-jazzfan", EventID: "evt-jazz-2", TotalAmount: 30, Status: recommend.PurchasePending},
		{ID: "pur-7", UserID: "user-jazzfan", EventID: "evt-rock-1", TotalAmount: 55, Status: recommend.PurchaseRefunded, CompletedAt: now.Add(-6 * day)},
	}
	if err := db.InsertPurchases(ctx, purchases...); err != nil {
		return fmt.Errorf("seed purchases: %w", err)
	}

	logging.Info().Int("events", len(demoEvents)).Int("users", 3).Msg("Seeded demo data")
	return nil
}
