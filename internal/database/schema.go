// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
schema.go - Database Schema Management

Tables:
  - events: catalog entries with capacity, sales and optional price range
  - event_genres: ordered genre tags per event
  - user_preferences / user_preference_values: explicit profile and its
    ordered genre, artist and venue lists
  - attendance: one row per user per attended event
  - purchases: ticket orders; only completed rows feed the engine

All timestamps are stored as UTC TIMESTAMP values.

Upserted tables (events, user_preferences) carry no secondary index: DuckDB
rewrites an indexed row as delete plus insert, which trips the key
constraint on upsert. Purchases are insert-only and keep theirs.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL DEFAULT '',
			venue_id VARCHAR NOT NULL DEFAULT '',
			capacity INTEGER NOT NULL DEFAULT 0,
			tickets_sold INTEGER NOT NULL DEFAULT 0,
			price_min DOUBLE,
			price_max DOUBLE,
			starts_at TIMESTAMP NOT NULL,
			status VARCHAR NOT NULL DEFAULT 'draft'
		)`,
		`CREATE TABLE IF NOT EXISTS event_genres (
			event_id VARCHAR NOT NULL,
			genre VARCHAR NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id VARCHAR PRIMARY KEY,
			price_min DOUBLE,
			price_max DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS user_preference_values (
			user_id VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			value VARCHAR NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			user_id VARCHAR NOT NULL,
			event_id VARCHAR NOT NULL,
			attended_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			event_id VARCHAR NOT NULL,
			total_amount DOUBLE NOT NULL DEFAULT 0,
			status VARCHAR NOT NULL,
			completed_at TIMESTAMP
		)`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_event_genres_genre ON event_genres(genre)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_user ON attendance(user_id, attended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_event ON attendance(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user_status ON purchases(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_completed ON purchases(status, completed_at)`,
	}
}

// createTables creates the tables and indexes.
func (db *DB) createTables(ctx context.Context) error {
	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, q := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
