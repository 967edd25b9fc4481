// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/recommend"
)

// UpsertEvent stores e and replaces its genre tags.
func (db *DB) UpsertEvent(ctx context.Context, e *recommend.Event) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "events", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var priceMin, priceMax sql.NullFloat64
		if e.Price != nil {
			if e.Price.Min != nil {
				priceMin = sql.NullFloat64{Float64: *e.Price.Min, Valid: true}
			}
			if e.Price.Max != nil {
				priceMax = sql.NullFloat64{Float64: *e.Price.Max, Valid: true}
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, title, venue_id, capacity, tickets_sold, price_min, price_max, starts_at, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   title = excluded.title, venue_id = excluded.venue_id, capacity = excluded.capacity,
			   tickets_sold = excluded.tickets_sold, price_min = excluded.price_min,
			   price_max = excluded.price_max, starts_at = excluded.starts_at, status = excluded.status`,
			e.ID, e.Title, e.VenueID, e.Capacity, e.TicketsSold, priceMin, priceMax, e.StartsAt.UTC(), string(e.Status),
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM event_genres WHERE event_id = ?`, e.ID); err != nil {
			return fmt.Errorf("delete genres: %w", err)
		}
		for i, g := range e.Genres {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO event_genres (event_id, genre, position) VALUES (?, ?, ?)`, e.ID, g, i,
			); err != nil {
				return fmt.Errorf("insert genre: %w", err)
			}
		}
		return nil
	})
}

// UpsertPreferences replaces the stored profile for p.UserID.
func (db *DB) UpsertPreferences(ctx context.Context, p *recommend.PreferenceProfile) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "user_preferences", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var priceMin, priceMax sql.NullFloat64
		if p.PriceRange != nil {
			if p.PriceRange.Min != nil {
				priceMin = sql.NullFloat64{Float64: *p.PriceRange.Min, Valid: true}
			}
			if p.PriceRange.Max != nil {
				priceMax = sql.NullFloat64{Float64: *p.PriceRange.Max, Valid: true}
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_preferences (user_id, price_min, price_max) VALUES (?, ?, ?)
			 ON CONFLICT (user_id) DO UPDATE SET price_min = excluded.price_min, price_max = excluded.price_max`,
			p.UserID, priceMin, priceMax,
		); err != nil {
			return fmt.Errorf("insert preferences: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_preference_values WHERE user_id = ?`, p.UserID); err != nil {
			return fmt.Errorf("delete preference values: %w", err)
		}
		lists := []struct {
			kind   string
			values []string
		}{
			{prefKindGenre, p.FavoriteGenres},
			{prefKindArtist, p.FavoriteArtists},
			{prefKindVenue, p.PreferredVenues},
		}
		for _, l := range lists {
			for i, v := range l.values {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO user_preference_values (user_id, kind, value, position) VALUES (?, ?, ?, ?)`,
					p.UserID, l.kind, v, i,
				); err != nil {
					return fmt.Errorf("insert preference value: %w", err)
				}
			}
		}
		return nil
	})
}

// RecordAttendance appends attendance rows.
func (db *DB) RecordAttendance(ctx context.Context, records ...recommend.AttendanceRecord) (err error) {
	start := time.Now()
	defer func() { observe("insert", "attendance", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO attendance (user_id, event_id, attended_at) VALUES (?, ?, ?)`,
				r.UserID, r.EventID, r.AttendedAt.UTC(),
			); err != nil {
				return fmt.Errorf("insert attendance: %w", err)
			}
		}
		return nil
	})
}

// InsertPurchases appends purchase rows. A missing ID gets a fresh UUID.
func (db *DB) InsertPurchases(ctx context.Context, purchases ...recommend.PurchaseRecord) (err error) {
	start := time.Now()
	defer func() { observe("insert", "purchases", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range purchases {
			id := p.ID
			if id == "" {
				id = uuid.NewString()
			}
			var completedAt sql.NullTime
			if !p.CompletedAt.IsZero() {
				completedAt = sql.NullTime{Time: p.CompletedAt.UTC(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO purchases (id, user_id, event_id, total_amount, status, completed_at) VALUES (?, ?, ?, ?, ?, ?)`,
				id, p.UserID, p.EventID, p.TotalAmount, string(p.Status), completedAt,
			); err != nil {
				return fmt.Errorf("insert purchase: %w", err)
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction bounded by the query timeout.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
