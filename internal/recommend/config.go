// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"
)

// Scoring constants. These are part of the ranking contract, not tuning knobs.
const (
	// ExplicitGenreWeight is added per explicitly favourited genre.
	ExplicitGenreWeight = 3.0
	// AttendedGenreWeight is added per genre of each attended event.
	AttendedGenreWeight = 1.0
	// AttendedVenueWeight is added to the venue of each attended event.
	AttendedVenueWeight = 1.0

	// GenreScoreMultiplier scales a genre weight into affinity score.
	GenreScoreMultiplier = 10.0
	// VenueScoreMultiplier scales a venue weight into affinity score.
	VenueScoreMultiplier = 5.0
	// LoveReasonThreshold is the genre weight at which a "You love" reason is given.
	LoveReasonThreshold = 3.0
	// PriceBonus is added when an event is within reach of the user's spend.
	PriceBonus = 10.0
	// PriceBonusSpendFactor bounds the minimum price eligible for PriceBonus.
	PriceBonusSpendFactor = 1.5
	// MaxReasons caps the reasons attached to one result.
	MaxReasons = 2

	// SharedGenreScore is the similarity contributed by each shared genre.
	SharedGenreScore = 20.0
	// PriceProximityMax is the price proximity term at zero price difference.
	PriceProximityMax = 20.0
	// PriceProximityDivisor turns a price gap into lost proximity points.
	PriceProximityDivisor = 5.0

	// HighRiskSoldRatio and HighRiskDays define the under-pacing flag.
	HighRiskSoldRatio = 0.5
	HighRiskDays      = 14
)

// Config contains the operational settings of the engine.
type Config struct {
	// Limits contains fetch limits and per-mode result sizes.
	Limits LimitsConfig `json:"limits"`

	// Fallbacks contains the documented defaults used when data is missing.
	Fallbacks FallbackConfig `json:"fallbacks"`

	// Trending contains the trailing window for sales velocity.
	Trending TrendingConfig `json:"trending"`

	// Forecast contains the demand forecaster settings.
	Forecast ForecastConfig `json:"forecast"`

	// RequestTimeout bounds a whole Recommend call, fan-out included.
	RequestTimeout time.Duration `json:"request_timeout"`

	// LogImpressions emits a "viewed" interaction per returned result when
	// the request carries a user ID.
	LogImpressions bool `json:"log_impressions"`
}

// LimitsConfig contains fetch limits and result sizes.
type LimitsConfig struct {
	// CandidateLimit caps the upcoming events fetched for scoring.
	CandidateLimit int `json:"candidate_limit"`

	// AttendanceHistory caps the attendance records folded into a profile.
	AttendanceHistory int `json:"attendance_history"`

	PersonalizedK  int `json:"personalized_k"`
	SimilarK       int `json:"similar_k"`
	CollaborativeK int `json:"collaborative_k"`
	TrendingK      int `json:"trending_k"`

	// MaxK is the largest per-request Limit override accepted.
	MaxK int `json:"max_k"`

	// ProfileTopGenres is the number of genres in a profile summary.
	ProfileTopGenres int `json:"profile_top_genres"`
}

// FallbackConfig contains defaults substituted for missing data.
type FallbackConfig struct {
	// AverageSpend is used when a user has no completed purchases.
	AverageSpend float64 `json:"average_spend"`

	// SellThrough is used when a forecast has no historical sample.
	SellThrough float64 `json:"sell_through"`
}

// TrendingConfig contains trending detector settings.
type TrendingConfig struct {
	Window time.Duration `json:"window"`
}

// ForecastConfig contains demand forecaster settings.
type ForecastConfig struct {
	// Horizon is how far ahead events are forecast.
	Horizon time.Duration `json:"horizon"`

	// SampleSize caps the historical events per forecast.
	SampleSize int `json:"sample_size"`

	// Concurrency caps the historical lookups in flight.
	Concurrency int `json:"concurrency"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			CandidateLimit:    100,
			AttendanceHistory: 50,
			PersonalizedK:     20,
			SimilarK:          20,
			CollaborativeK:    10,
			TrendingK:         10,
			MaxK:              100,
			ProfileTopGenres:  5,
		},
		Fallbacks: FallbackConfig{
			AverageSpend: 100,
			SellThrough:  0.6,
		},
		Trending: TrendingConfig{
			Window: 7 * 24 * time.Hour,
		},
		Forecast: ForecastConfig{
			Horizon:     30 * 24 * time.Hour,
			SampleSize:  10,
			Concurrency: 10,
		},
		RequestTimeout: 10 * time.Second,
		LogImpressions: true,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Limits.CandidateLimit < 1 {
		return fmt.Errorf("limits.candidate_limit must be positive, got %d", c.Limits.CandidateLimit)
	}
	if c.Limits.AttendanceHistory < 0 {
		return fmt.Errorf("limits.attendance_history must be non-negative, got %d", c.Limits.AttendanceHistory)
	}
	for name, k := range map[string]int{
		"personalized_k":  c.Limits.PersonalizedK,
		"similar_k":       c.Limits.SimilarK,
		"collaborative_k": c.Limits.CollaborativeK,
		"trending_k":      c.Limits.TrendingK,
		"max_k":           c.Limits.MaxK,
	} {
		if k < 1 {
			return fmt.Errorf("limits.%s must be positive, got %d", name, k)
		}
	}
	if c.Limits.ProfileTopGenres < 0 {
		return fmt.Errorf("limits.profile_top_genres must be non-negative, got %d", c.Limits.ProfileTopGenres)
	}

	if c.Fallbacks.AverageSpend < 0 {
		return fmt.Errorf("fallbacks.average_spend must be non-negative, got %f", c.Fallbacks.AverageSpend)
	}
	if c.Fallbacks.SellThrough < 0 || c.Fallbacks.SellThrough > 1 {
		return fmt.Errorf("fallbacks.sell_through must be in [0, 1], got %f", c.Fallbacks.SellThrough)
	}

	if c.Trending.Window <= 0 {
		return fmt.Errorf("trending.window must be positive, got %v", c.Trending.Window)
	}

	if c.Forecast.Horizon <= 0 {
		return fmt.Errorf("forecast.horizon must be positive, got %v", c.Forecast.Horizon)
	}
	if c.Forecast.SampleSize < 1 {
		return fmt.Errorf("forecast.sample_size must be positive, got %d", c.Forecast.SampleSize)
	}
	if c.Forecast.Concurrency < 1 {
		return fmt.Errorf("forecast.concurrency must be positive, got %d", c.Forecast.Concurrency)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// topK returns the default result size for a mode.
func (c *Config) topK(mode Mode) int {
	switch mode {
	case ModePersonalized:
		return c.Limits.PersonalizedK
	case ModeSimilar:
		return c.Limits.SimilarK
	case ModeCollaborative:
		return c.Limits.CollaborativeK
	case ModeTrending:
		return c.Limits.TrendingK
	default:
		return 0
	}
}
