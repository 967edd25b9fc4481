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

	"github.com/tomtom215/marquee/internal/recommend"
)

// Preference list kinds in user_preference_values.
const (
	prefKindGenre  = "genre"
	prefKindArtist = "artist"
	prefKindVenue  = "venue"
)

// GetPreferences implements recommend.ProfileStore. A user without a stored
// profile yields nil, nil.
func (db *DB) GetPreferences(ctx context.Context, userID string) (profile *recommend.PreferenceProfile, err error) {
	start := time.Now()
	defer func() { observe("select", "user_preferences", start, err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var priceMin, priceMax sql.NullFloat64
	err = db.conn.QueryRowContext(ctx,
		`SELECT price_min, price_max FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&priceMin, &priceMax)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}

	profile = &recommend.PreferenceProfile{
		UserID:          userID,
		FavoriteGenres:  []string{},
		FavoriteArtists: []string{},
		PreferredVenues: []string{},
		PriceRange:      priceRange(priceMin, priceMax),
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT kind, value FROM user_preference_values WHERE user_id = ? ORDER BY kind, position`, userID)
	if err != nil {
		return nil, fmt.Errorf("get preference values for %s: %w", userID, err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var kind, value string
		if err = rows.Scan(&kind, &value); err != nil {
			return nil, fmt.Errorf("scan preference value: %w", err)
		}
		switch kind {
		case prefKindGenre:
			profile.FavoriteGenres = append(profile.FavoriteGenres, value)
		case prefKindArtist:
			profile.FavoriteArtists = append(profile.FavoriteArtists, value)
		case prefKindVenue:
			profile.PreferredVenues = append(profile.PreferredVenues, value)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preference values: %w", err)
	}
	return profile, nil
}
