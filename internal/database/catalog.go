// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/database/query"
	"github.com/tomtom215/marquee/internal/recommend"
)

const eventColumns = `e.id, e.title, e.venue_id, e.capacity, e.tickets_sold, e.price_min, e.price_max, e.starts_at, e.status`

// ListUpcomingPublished implements recommend.Catalog.
func (db *DB) ListUpcomingPublished(ctx context.Context, now time.Time, limit int) (events []recommend.Event, err error) {
	start := time.Now()
	defer func() { observe("select", "events", start, err) }()

	wb := query.NewWhereBuilder().
		AddClause("e.status = ?", string(recommend.StatusPublished)).
		AddTimeRange("e.starts_at", &now, nil, false)
	where, args := wb.BuildWithPrefix()

	q := `SELECT ` + eventColumns + ` FROM events e ` + where + ` ORDER BY e.starts_at, e.id` + limitClause(limit)
	events, err = db.queryEvents(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// GetEvent implements recommend.Catalog.
func (db *DB) GetEvent(ctx context.Context, id string) (event *recommend.Event, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, recommend.ErrNotFound) {
			observe("select", "events", start, nil)
			return
		}
		observe("select", "events", start, err)
	}()

	events, err := db.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %s: %w", id, recommend.ErrNotFound)
	}
	return &events[0], nil
}

// GetEvents implements recommend.Catalog.
func (db *DB) GetEvents(ctx context.Context, ids []string) (events []recommend.Event, err error) {
	if len(ids) == 0 {
		return []recommend.Event{}, nil
	}
	start := time.Now()
	defer func() { observe("select", "events", start, err) }()

	where, args := query.NewWhereBuilder().AddIn("e.id", ids).BuildWithPrefix()
	events, err = db.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e `+where+` ORDER BY e.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return events, nil
}

// ListUpcomingWithin implements recommend.Catalog.
func (db *DB) ListUpcomingWithin(ctx context.Context, from, to time.Time) (events []recommend.Event, err error) {
	start := time.Now()
	defer func() { observe("select", "events", start, err) }()

	where, args := query.NewWhereBuilder().
		AddClause("e.status = ?", string(recommend.StatusPublished)).
		AddTimeRange("e.starts_at", &from, &to, false).
		BuildWithPrefix()

	events, err = db.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e `+where+` ORDER BY e.starts_at, e.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list events within horizon: %w", err)
	}
	return events, nil
}

// ListHistoricalByGenres implements recommend.Catalog.
func (db *DB) ListHistoricalByGenres(ctx context.Context, genres []string, before time.Time, limit int) (events []recommend.Event, err error) {
	if len(genres) == 0 {
		return []recommend.Event{}, nil
	}
	start := time.Now()
	defer func() { observe("select", "events", start, err) }()

	args := []interface{}{before.UTC()}
	args = append(args, query.StringArgs(genres)...)

	q := `SELECT ` + eventColumns + ` FROM events e
		WHERE e.starts_at < ?
		  AND EXISTS (
			SELECT 1 FROM event_genres g
			WHERE g.event_id = e.id AND g.genre IN (` + query.Placeholders(len(genres)) + `)
		  )
		ORDER BY e.starts_at DESC, e.id` + limitClause(limit)

	events, err = db.queryEvents(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list historical events: %w", err)
	}
	return events, nil
}

// queryEvents runs an event query and attaches genres.
func (db *DB) queryEvents(ctx context.Context, q string, args ...interface{}) ([]recommend.Event, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	events := []recommend.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachGenres(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (recommend.Event, error) {
	var (
		e                  recommend.Event
		status             string
		priceMin, priceMax sql.NullFloat64
	)
	if err := rows.Scan(&e.ID, &e.Title, &e.VenueID, &e.Capacity, &e.TicketsSold, &priceMin, &priceMax, &e.StartsAt, &status); err != nil {
		return e, fmt.Errorf("scan event: %w", err)
	}
	e.Status = recommend.EventStatus(status)
	e.StartsAt = e.StartsAt.UTC()
	e.Price = priceRange(priceMin, priceMax)
	e.Genres = []string{}
	return e, nil
}

// attachGenres fills Genres for events in tag order.
func (db *DB) attachGenres(ctx context.Context, events []recommend.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, len(events))
	index := make(map[string]int, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = i
	}

	where, args := query.NewWhereBuilder().AddIn("event_id", ids).BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx, `SELECT event_id, genre FROM event_genres `+where+` ORDER BY event_id, position`, args...)
	if err != nil {
		return fmt.Errorf("query genres: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id, genre string
		if err := rows.Scan(&id, &genre); err != nil {
			return fmt.Errorf("scan genre: %w", err)
		}
		if i, ok := index[id]; ok {
			events[i].Genres = append(events[i].Genres, genre)
		}
	}
	return rows.Err()
}

// limitClause renders a LIMIT for positive n. Zero or negative means no limit.
func limitClause(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

func priceRange(minPrice, maxPrice sql.NullFloat64) *recommend.PriceRange {
	if !minPrice.Valid && !maxPrice.Valid {
		return nil
	}
	pr := &recommend.PriceRange{}
	if minPrice.Valid {
		v := minPrice.Float64
		pr.Min = &v
	}
	if maxPrice.Valid {
		v := maxPrice.Float64
		pr.Max = &v
	}
	return pr
}
