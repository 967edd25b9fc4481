// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/database/query"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ListAttendance implements recommend.HistoryStore.
func (db *DB) ListAttendance(ctx context.Context, userID string, limit int) (records []recommend.AttendanceRecord, err error) {
	start := time.Now()
	defer func() { observe("select", "attendance", start, err) }()

	records, err = db.queryAttendance(ctx,
		`SELECT user_id, event_id, attended_at FROM attendance
		 WHERE user_id = ?
		 ORDER BY attended_at DESC, event_id`+limitClause(limit), userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", userID, err)
	}
	return records, nil
}

// ListAttendees implements recommend.HistoryStore.
func (db *DB) ListAttendees(ctx context.Context, eventID string) (users []string, err error) {
	start := time.Now()
	defer func() { observe("select", "attendance", start, err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM attendance WHERE event_id = ? ORDER BY user_id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees of %s: %w", eventID, err)
	}
	defer closeWithLog(rows, "rows")

	users = []string{}
	for rows.Next() {
		var u string
		if err = rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}
	return users, nil
}

// ListAttendanceForUsers implements recommend.HistoryStore.
func (db *DB) ListAttendanceForUsers(ctx context.Context, userIDs []string, excludeEventID string) (records []recommend.AttendanceRecord, err error) {
	if len(userIDs) == 0 {
		return []recommend.AttendanceRecord{}, nil
	}
	start := time.Now()
	defer func() { observe("select", "attendance", start, err) }()

	where, args := query.NewWhereBuilder().
		AddIn("user_id", userIDs).
		AddNotEqual("event_id", excludeEventID).
		BuildWithPrefix()

	records, err = db.queryAttendance(ctx,
		`SELECT user_id, event_id, attended_at FROM attendance `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list co-attendance: %w", err)
	}
	return records, nil
}

func (db *DB) queryAttendance(ctx context.Context, q string, args ...interface{}) ([]recommend.AttendanceRecord, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	records := []recommend.AttendanceRecord{}
	for rows.Next() {
		var r recommend.AttendanceRecord
		if err := rows.Scan(&r.UserID, &r.EventID, &r.AttendedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		r.AttendedAt = r.AttendedAt.UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}
