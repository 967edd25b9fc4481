// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"time"
)

// Mode selects the downstream component that answers a Request.
type Mode string

const (
	// ModePersonalized ranks upcoming events against the caller's interest model.
	ModePersonalized Mode = "personalized"
	// ModeSimilar ranks upcoming events by similarity to a source event.
	ModeSimilar Mode = "similar"
	// ModeTrending ranks upcoming events by trailing sales velocity.
	ModeTrending Mode = "trending"
	// ModeCollaborative ranks events attended by the source event's audience.
	ModeCollaborative Mode = "collaborative"
	// ModeDemandForecast projects sell-through for events in the forecast horizon.
	ModeDemandForecast Mode = "demand_forecast"
)

// Modes lists every supported mode in documentation order.
var Modes = []Mode{ModePersonalized, ModeSimilar, ModeTrending, ModeCollaborative, ModeDemandForecast}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// RequiresEventID reports whether the mode needs a source event.
func (m Mode) RequiresEventID() bool {
	return m == ModeSimilar || m == ModeCollaborative
}

// String returns the wire name of the mode.
func (m Mode) String() string {
	return string(m)
}

// EventStatus is the publication status of a catalog event.
type EventStatus string

const (
	StatusPublished EventStatus = "published"
	StatusDraft     EventStatus = "draft"
	StatusCancelled EventStatus = "cancelled"
)

// PriceRange holds the optional ticket price bounds of an event.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Event is a catalog entry. The engine never mutates it.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title,omitempty"`
	Genres      []string    `json:"genres"`
	VenueID     string      `json:"venue_id"`
	Capacity    int         `json:"capacity"`
	TicketsSold int         `json:"tickets_sold"`
	Price       *PriceRange `json:"price,omitempty"`
	StartsAt    time.Time   `json:"starts_at"`
	Status      EventStatus `json:"status"`
}

// MinPrice returns the minimum ticket price and whether it is defined.
func (e *Event) MinPrice() (float64, bool) {
	if e.Price == nil || e.Price.Min == nil {
		return 0, false
	}
	return *e.Price.Min, true
}

// IsUpcomingPublished reports whether the event is published and starts after now.
func (e *Event) IsUpcomingPublished(now time.Time) bool {
	return e.Status == StatusPublished && e.StartsAt.After(now)
}

// PreferenceProfile holds the explicit preferences a user stated.
type PreferenceProfile struct {
	UserID          string      `json:"user_id"`
	FavoriteGenres  []string    `json:"favorite_genres"`
	FavoriteArtists []string    `json:"favorite_artists"`
	PreferredVenues []string    `json:"preferred_venues"`
	PriceRange      *PriceRange `json:"price_range,omitempty"`
}

// AttendanceRecord is an append-only record of a user attending an event.
type AttendanceRecord struct {
	UserID     string    `json:"user_id"`
	EventID    string    `json:"event_id"`
	AttendedAt time.Time `json:"attended_at"`
}

// PurchaseStatus is the lifecycle state of a purchase.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// PurchaseRecord is a ticket order.
type PurchaseRecord struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	EventID     string         `json:"event_id"`
	TotalAmount float64        `json:"total_amount"`
	Status      PurchaseStatus `json:"status"`
	CompletedAt time.Time      `json:"completed_at"`
}

// InterestModel is the request-scoped weighted view of what a user likes.
// It is built fresh for every request and never shared.
type InterestModel struct {
	GenreWeights map[string]float64
	VenueWeights map[string]float64
	AverageSpend float64

	// AttendedCount is the number of attendance records folded into the model.
	AttendedCount int

	// SpendFallback is set when AverageSpend is the fallback constant.
	SpendFallback bool
}

// NewInterestModel returns an empty model with the given average spend.
func NewInterestModel(averageSpend float64) *InterestModel {
	return &InterestModel{
		GenreWeights:  make(map[string]float64),
		VenueWeights:  make(map[string]float64),
		AverageSpend:  averageSpend,
		SpendFallback: true,
	}
}

// RiskLevel flags events whose sales pace is behind the projection.
type RiskLevel string

const (
	RiskNormal RiskLevel = "normal"
	RiskHigh   RiskLevel = "high"
)

// Forecast is the projected demand for one upcoming event.
type Forecast struct {
	PredictedTotal      int       `json:"predicted_total"`
	AverageSellThrough  float64   `json:"average_sell_through"`
	SampleSize          int       `json:"sample_size"`
	DaysUntilEvent      int       `json:"days_until_event"`
	SalesVelocityNeeded int       `json:"sales_velocity_needed"`
	RiskLevel           RiskLevel `json:"risk_level"`
}

// RankedResult is one entry of a response list. At most one auxiliary
// metric is set, matching the mode that produced it.
type RankedResult struct {
	Event   Event    `json:"event"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`

	Similarity    *float64  `json:"similarity,omitempty"`
	CoAttendance  *int      `json:"co_attendance,omitempty"`
	SalesVelocity *int      `json:"sales_velocity,omitempty"`
	Forecast      *Forecast `json:"forecast,omitempty"`
}

// Request is the mode-dispatched inbound request.
type Request struct {
	Mode    Mode   `json:"mode"`
	UserID  string `json:"user_id,omitempty"`
	EventID string `json:"event_id,omitempty"`

	// Limit overrides the mode's default top-K when positive.
	Limit int `json:"limit,omitempty"`
}

// GenreWeight is one entry of a profile summary.
type GenreWeight struct {
	Genre  string  `json:"genre"`
	Weight float64 `json:"weight"`
}

// ProfileSummary describes the interest model behind a personalized response.
type ProfileSummary struct {
	TopGenres     []GenreWeight `json:"top_genres"`
	AverageSpend  float64       `json:"average_spend"`
	AttendedCount int           `json:"attended_count"`
}

// Response is the engine's answer to a Request.
type Response struct {
	Mode        Mode            `json:"mode"`
	Results     []RankedResult  `json:"results"`
	Profile     *ProfileSummary `json:"profile,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}
