// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"time"
)

// Note: The engine consumes these interfaces and owns none of the data
// behind them. internal/database implements them on DuckDB and
// internal/resilience wraps them with circuit breakers.

// Catalog is the read-only event catalog.
type Catalog interface {
	// ListUpcomingPublished returns published events starting after now,
	// ordered by start time then ID, at most limit entries.
	ListUpcomingPublished(ctx context.Context, now time.Time, limit int) ([]Event, error)

	// GetEvent returns a single event regardless of status or date.
	// Returns ErrNotFound when the event does not exist.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// GetEvents returns the events that exist among ids, in any order.
	// Unknown IDs are skipped.
	GetEvents(ctx context.Context, ids []string) ([]Event, error)

	// ListUpcomingWithin returns published events with from < starts_at <= to,
	// ordered by start time then ID.
	ListUpcomingWithin(ctx context.Context, from, to time.Time) ([]Event, error)

	// ListHistoricalByGenres returns up to limit events that started before
	// the given time and share at least one genre, most recent first.
	ListHistoricalByGenres(ctx context.Context, genres []string, before time.Time, limit int) ([]Event, error)
}

// ProfileStore holds explicit user preferences.
type ProfileStore interface {
	// GetPreferences returns nil, nil when the user has no stored profile.
	GetPreferences(ctx context.Context, userID string) (*PreferenceProfile, error)
}

// HistoryStore holds attendance records.
type HistoryStore interface {
	// ListAttendance returns the user's most recent attendance records,
	// newest first, at most limit entries.
	ListAttendance(ctx context.Context, userID string, limit int) ([]AttendanceRecord, error)

	// ListAttendees returns the distinct users who attended the event.
	ListAttendees(ctx context.Context, eventID string) ([]string, error)

	// ListAttendanceForUsers returns every attendance record of the given
	// users except those for excludeEventID.
	ListAttendanceForUsers(ctx context.Context, userIDs []string, excludeEventID string) ([]AttendanceRecord, error)
}

// PurchaseStore holds ticket purchases.
type PurchaseStore interface {
	// ListCompletedPurchases returns the user's completed purchases.
	ListCompletedPurchases(ctx context.Context, userID string) ([]PurchaseRecord, error)

	// ListCompletedPurchasesInWindow returns every purchase completed in
	// [start, end].
	ListCompletedPurchasesInWindow(ctx context.Context, start, end time.Time) ([]PurchaseRecord, error)
}

// InteractionType names what a user did with a recommendation.
type InteractionType string

const (
	InteractionViewed    InteractionType = "viewed"
	InteractionClicked   InteractionType = "clicked"
	InteractionDismissed InteractionType = "dismissed"
)

// Interaction is a single write to the interaction logger.
type Interaction struct {
	UserID     string          `json:"user_id"`
	EventID    string          `json:"event_id"`
	Type       InteractionType `json:"interaction_type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// InteractionLogger is a write-only, fire-and-forget sink. Implementations
// must return without waiting on I/O.
type InteractionLogger interface {
	LogInteraction(it Interaction)
}

// Collaborators bundles the stores an Engine reads from. Interactions is
// optional.
type Collaborators struct {
	Catalog      Catalog
	Profiles     ProfileStore
	History      HistoryStore
	Purchases    PurchaseStore
	Interactions InteractionLogger
}
