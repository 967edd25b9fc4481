// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package resilience

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Breaker names as they appear in the circuit_breaker_* metrics.
const (
	CatalogBreaker   = "store-catalog"
	ProfilesBreaker  = "store-profiles"
	HistoryBreaker   = "store-history"
	PurchasesBreaker = "store-purchases"
)

// Stores holds the breaker-wrapped collaborators and their breakers.
type Stores struct {
	Catalog   *Catalog
	Profiles  *ProfileStore
	History   *HistoryStore
	Purchases *PurchaseStore
}

// Wrap puts a breaker in front of every store in c. The interaction logger
// is passed through untouched.
func Wrap(c recommend.Collaborators, s Settings) *Stores {
	named := func(name string) *Breaker {
		ns := s
		ns.Name = name
		return NewBreaker(ns)
	}
	return &Stores{
		Catalog:   &Catalog{next: c.Catalog, breaker: named(CatalogBreaker)},
		Profiles:  &ProfileStore{next: c.Profiles, breaker: named(ProfilesBreaker)},
		History:   &HistoryStore{next: c.History, breaker: named(HistoryBreaker)},
		Purchases: &PurchaseStore{next: c.Purchases, breaker: named(PurchasesBreaker)},
	}
}

// Collaborators returns the wrapped stores with the given interaction logger.
func (s *Stores) Collaborators(interactions recommend.InteractionLogger) recommend.Collaborators {
	return recommend.Collaborators{
		Catalog:      s.Catalog,
		Profiles:     s.Profiles,
		History:      s.History,
		Purchases:    s.Purchases,
		Interactions: interactions,
	}
}

// Breakers returns every breaker in Stores.
func (s *Stores) Breakers() []*Breaker {
	return []*Breaker{s.Catalog.breaker, s.Profiles.breaker, s.History.breaker, s.Purchases.breaker}
}

// Catalog is a recommend.Catalog behind a circuit breaker.
type Catalog struct {
	next    recommend.Catalog
	breaker *Breaker
}

func (c *Catalog) ListUpcomingPublished(ctx context.Context, now time.Time, limit int) ([]recommend.Event, error) {
	return call(c.breaker, func() ([]recommend.Event, error) {
		return c.next.ListUpcomingPublished(ctx, now, limit)
	})
}

func (c *Catalog) GetEvent(ctx context.Context, id string) (*recommend.Event, error) {
	return call(c.breaker, func() (*recommend.Event, error) {
		return c.next.GetEvent(ctx, id)
	})
}

func (c *Catalog) GetEvents(ctx context.Context, ids []string) ([]recommend.Event, error) {
	return call(c.breaker, func() ([]recommend.Event, error) {
		return c.next.GetEvents(ctx, ids)
	})
}

func (c *Catalog) ListUpcomingWithin(ctx context.Context, from, to time.Time) ([]recommend.Event, error) {
	return call(c.breaker, func() ([]recommend.Event, error) {
		return c.next.ListUpcomingWithin(ctx, from, to)
	})
}

func (c *Catalog) ListHistoricalByGenres(ctx context.Context, genres []string, before time.Time, limit int) ([]recommend.Event, error) {
	return call(c.breaker, func() ([]recommend.Event, error) {
		return c.next.ListHistoricalByGenres(ctx, genres, before, limit)
	})
}

// ProfileStore is a recommend.ProfileStore behind a circuit breaker.
type ProfileStore struct {
	next    recommend.ProfileStore
	breaker *Breaker
}

func (p *ProfileStore) GetPreferences(ctx context.Context, userID string) (*recommend.PreferenceProfile, error) {
	return call(p.breaker, func() (*recommend.PreferenceProfile, error) {
		return p.next.GetPreferences(ctx, userID)
	})
}

// HistoryStore is a recommend.HistoryStore behind a circuit breaker.
type HistoryStore struct {
	next    recommend.HistoryStore
	breaker *Breaker
}

func (h *HistoryStore) ListAttendance(ctx context.Context, userID string, limit int) ([]recommend.AttendanceRecord, error) {
	return call(h.breaker, func() ([]recommend.AttendanceRecord, error) {
		return h.next.ListAttendance(ctx, userID, limit)
	})
}

func (h *HistoryStore) ListAttendees(ctx context.Context, eventID string) ([]string, error) {
	return call(h.breaker, func() ([]string, error) {
		return h.next.ListAttendees(ctx, eventID)
	})
}

func (h *HistoryStore) ListAttendanceForUsers(ctx context.Context, userIDs []string, excludeEventID string) ([]recommend.AttendanceRecord, error) {
	return call(h.breaker, func() ([]recommend.AttendanceRecord, error) {
		return h.next.ListAttendanceForUsers(ctx, userIDs, excludeEventID)
	})
}

// PurchaseStore is a recommend.PurchaseStore behind a circuit breaker.
type PurchaseStore struct {
	next    recommend.PurchaseStore
	breaker *Breaker
}

func (p *PurchaseStore) ListCompletedPurchases(ctx context.Context, userID string) ([]recommend.PurchaseRecord, error) {
	return call(p.breaker, func() ([]recommend.PurchaseRecord, error) {
		return p.next.ListCompletedPurchases(ctx, userID)
	})
}

func (p *PurchaseStore) ListCompletedPurchasesInWindow(ctx context.Context, start, end time.Time) ([]recommend.PurchaseRecord, error) {
	return call(p.breaker, func() ([]recommend.PurchaseRecord, error) {
		return p.next.ListCompletedPurchasesInWindow(ctx, start, end)
	})
}

var (
	_ recommend.Catalog       = (*Catalog)(nil)
	_ recommend.ProfileStore  = (*ProfileStore)(nil)
	_ recommend.HistoryStore  = (*HistoryStore)(nil)
	_ recommend.PurchaseStore = (*PurchaseStore)(nil)
)
