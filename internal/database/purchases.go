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

	"github.com/tomtom215/marquee/internal/database/query"
	"github.com/tomtom215/marquee/internal/recommend"
)

const purchaseColumns = `id, user_id, event_id, total_amount, status, completed_at`

// ListCompletedPurchases implements recommend.PurchaseStore.
func (db *DB) ListCompletedPurchases(ctx context.Context, userID string) (purchases []recommend.PurchaseRecord, err error) {
	start := time.Now()
	defer func() { observe("select", "purchases", start, err) }()

	where, args := query.NewWhereBuilder().
		AddClause("user_id = ?", userID).
		AddClause("status = ?", string(recommend.PurchaseCompleted)).
		BuildWithPrefix()

	purchases, err = db.queryPurchases(ctx, `SELECT `+purchaseColumns+` FROM purchases `+where+` ORDER BY completed_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases for %s: %w", userID, err)
	}
	return purchases, nil
}

// ListCompletedPurchasesInWindow implements recommend.PurchaseStore.
func (db *DB) ListCompletedPurchasesInWindow(ctx context.Context, from, to time.Time) (purchases []recommend.PurchaseRecord, err error) {
	start := time.Now()
	defer func() { observe("select", "purchases", start, err) }()

	where, args := query.NewWhereBuilder().
		AddClause("status = ?", string(recommend.PurchaseCompleted)).
		AddTimeRange("completed_at", &from, &to, true).
		BuildWithPrefix()

	purchases, err = db.queryPurchases(ctx, `SELECT `+purchaseColumns+` FROM purchases `+where+` ORDER BY completed_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases in window: %w", err)
	}
	return purchases, nil
}

func (db *DB) queryPurchases(ctx context.Context, q string, args ...interface{}) ([]recommend.PurchaseRecord, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	purchases := []recommend.PurchaseRecord{}
	for rows.Next() {
		var (
			p           recommend.PurchaseRecord
			status      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.TotalAmount, &status, &completedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		p.Status = recommend.PurchaseStatus(status)
		if completedAt.Valid {
			p.CompletedAt = completedAt.Time.UTC()
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
