// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommendtest provides in-memory collaborators for tests of
// packages that consume recommend stores.
package recommendtest

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Method names accepted by MemoryStore.FailOn and MemoryStore.BlockOn.
const (
	MethodListUpcomingPublished          = "ListUpcomingPublished"
	MethodGetEvent                       = "GetEvent"
	MethodGetEvents                      = "GetEvents"
	MethodListUpcomingWithin             = "ListUpcomingWithin"
	MethodListHistoricalByGenres         = "ListHistoricalByGenres"
	MethodGetPreferences                 = "GetPreferences"
	MethodListAttendance                 = "ListAttendance"
	MethodListAttendees                  = "ListAttendees"
	MethodListAttendanceForUsers         = "ListAttendanceForUsers"
	MethodListCompletedPurchases         = "ListCompletedPurchases"
	MethodListCompletedPurchasesInWindow = "ListCompletedPurchasesInWindow"
)

// MemoryStore implements every recommend store interface over slices.
// Insertion order is the tie order the DuckDB store would produce for
// equal start times, so tests can rely on it.
type MemoryStore struct {
	mu          sync.RWMutex
	events      []recommend.Event
	profiles    map[string]*recommend.PreferenceProfile
	attendance  []recommend.AttendanceRecord
	purchases   []recommend.PurchaseRecord
	failures    map[string]error
	blocking    map[string]bool
	calls       map[string]*atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*recommend.PreferenceProfile),
		failures: make(map[string]error),
		blocking: make(map[string]bool),
		calls:    make(map[string]*atomic.Int64),
	}
}

// Collaborators returns the store wired into every collaborator slot.
func (m *MemoryStore) Collaborators() recommend.Collaborators {
	return recommend.Collaborators{
		Catalog:   m,
		Profiles:  m,
		History:   m,
		Purchases: m,
	}
}

// AddEvents appends events to the catalog.
func (m *MemoryStore) AddEvents(events ...recommend.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// SetPreferences stores a profile.
func (m *MemoryStore) SetPreferences(p *recommend.PreferenceProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

// AddAttendance appends attendance records.
func (m *MemoryStore) AddAttendance(records ...recommend.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance = append(m.attendance, records...)
}

// AddPurchases appends purchase records.
func (m *MemoryStore) AddPurchases(records ...recommend.PurchaseRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases = append(m.purchases, records...)
}

// FailOn makes method return err until cleared with a nil err.
func (m *MemoryStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

// BlockOn makes method wait for context cancellation before returning.
func (m *MemoryStore) BlockOn(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking[method] = true
}

// Calls returns how many times method was invoked.
func (m *MemoryStore) Calls(method string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.calls[method]; ok {
		return c.Load()
	}
	return 0
}

// MaxInFlight returns the peak number of concurrent calls observed.
func (m *MemoryStore) MaxInFlight() int64 {
	return m.maxInFlight.Load()
}

// enter records a call and applies any injected failure or blocking.
func (m *MemoryStore) enter(ctx context.Context, method string) (func(), error) {
	m.mu.Lock()
	c, ok := m.calls[method]
	if !ok {
		c = &atomic.Int64{}
		m.calls[method] = c
	}
	failure := m.failures[method]
	block := m.blocking[method]
	m.mu.Unlock()

	c.Add(1)
	n := m.inFlight.Add(1)
	for {
		peak := m.maxInFlight.Load()
		if n <= peak || m.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	done := func() { m.inFlight.Add(-1) }

	if block {
		<-ctx.Done()
		done()
		return nil, ctx.Err()
	}
	if failure != nil {
		done()
		return nil, failure
	}
	if err := ctx.Err(); err != nil {
		done()
		return nil, err
	}
	return done, nil
}

// ListUpcomingPublished implements recommend.Catalog.
func (m *MemoryStore) ListUpcomingPublished(ctx context.Context, now time.Time, limit int) ([]recommend.Event, error) {
	done, err := m.enter(ctx, MethodListUpcomingPublished)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recommend.Event
	for _, e := range m.sortedEvents() {
		if e.IsUpcomingPublished(now) {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetEvent implements recommend.Catalog.
func (m *MemoryStore) GetEvent(ctx context.Context, id string) (*recommend.Event, error) {
	done, err := m.enter(ctx, MethodGetEvent)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.events {
		if m.events[i].ID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, recommend.ErrNotFound
}

// GetEvents implements recommend.Catalog.
func (m *MemoryStore) GetEvents(ctx context.Context, ids []string) ([]recommend.Event, error) {
	done, err := m.enter(ctx, MethodGetEvents)
	if err != nil {
		return nil, err
	}
	defer done()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []recommend.Event
	for _, e := range m.events {
		if _, ok := want[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListUpcomingWithin implements recommend.Catalog.
func (m *MemoryStore) ListUpcomingWithin(ctx context.Context, from, to time.Time) ([]recommend.Event, error) {
	done, err := m.enter(ctx, MethodListUpcomingWithin)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []recommend.Event
	for _, e := range m.sortedEvents() {
		if e.Status == recommend.StatusPublished && e.StartsAt.After(from) && !e.StartsAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListHistoricalByGenres implements recommend.Catalog.
func (m *MemoryStore) ListHistoricalByGenres(ctx context.Context, genres []string, before time.Time, limit int) ([]recommend.Event, error) {
	done, err := m.enter(ctx, MethodListHistoricalByGenres)
	if err != nil {
		return nil, err
	}
	defer done()

	want := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		want[g] = struct{}{}
	}

	m.mu.RLock()
	events := m.sortedEvents()
	m.mu.RUnlock()

	var out []recommend.Event
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if !e.StartsAt.Before(before) {
			continue
		}
		for _, g := range e.Genres {
			if _, ok := want[g]; ok {
				out = append(out, e)
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetPreferences implements recommend.ProfileStore.
func (m *MemoryStore) GetPreferences(ctx context.Context, userID string) (*recommend.PreferenceProfile, error) {
	done, err := m.enter(ctx, MethodGetPreferences)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ListAttendance implements recommend.HistoryStore.
func (m *MemoryStore) ListAttendance(ctx context.Context, userID string, limit int) ([]recommend.AttendanceRecord, error) {
	done, err := m.enter(ctx, MethodListAttendance)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	var out []recommend.AttendanceRecord
	for _, r := range m.attendance {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AttendedAt.After(out[j].AttendedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListAttendees implements recommend.HistoryStore.
func (m *MemoryStore) ListAttendees(ctx context.Context, eventID string) ([]string, error) {
	done, err := m.enter(ctx, MethodListAttendees)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, r := range m.attendance {
		if r.EventID != eventID {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r.UserID)
	}
	sort.Strings(out)
	return out, nil
}

// ListAttendanceForUsers implements recommend.HistoryStore.
func (m *MemoryStore) ListAttendanceForUsers(ctx context.Context, userIDs []string, excludeEventID string) ([]recommend.AttendanceRecord, error) {
	done, err := m.enter(ctx, MethodListAttendanceForUsers)
	if err != nil {
		return nil, err
	}
	defer done()

	want := make(map[string]struct{}, len(userIDs))
	for _, u := range userIDs {
		want[u] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []recommend.AttendanceRecord
	for _, r := range m.attendance {
		if r.EventID == excludeEventID {
			continue
		}
		if _, ok := want[r.UserID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListCompletedPurchases implements recommend.PurchaseStore.
func (m *MemoryStore) ListCompletedPurchases(ctx context.Context, userID string) ([]recommend.PurchaseRecord, error) {
	done, err := m.enter(ctx, MethodListCompletedPurchases)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []recommend.PurchaseRecord
	for _, p := range m.purchases {
		if p.UserID == userID && p.Status == recommend.PurchaseCompleted {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListCompletedPurchasesInWindow implements recommend.PurchaseStore.
func (m *MemoryStore) ListCompletedPurchasesInWindow(ctx context.Context, start, end time.Time) ([]recommend.PurchaseRecord, error) {
	done, err := m.enter(ctx, MethodListCompletedPurchasesInWindow)
	if err != nil {
		return nil, err
	}
	defer done()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []recommend.PurchaseRecord
	for _, p := range m.purchases {
		if p.Status != recommend.PurchaseCompleted {
			continue
		}
		if p.CompletedAt.Before(start) || p.CompletedAt.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// sortedEvents returns events by start time, insertion order for ties.
// Caller holds mu.
func (m *MemoryStore) sortedEvents() []recommend.Event {
	out := make([]recommend.Event, len(m.events))
	copy(out, m.events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

// RecordingLogger is an InteractionLogger that keeps every interaction.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []recommend.Interaction
}

// LogInteraction implements recommend.InteractionLogger.
func (l *RecordingLogger) LogInteraction(it recommend.Interaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, it)
}

// Entries returns a copy of the recorded interactions.
func (l *RecordingLogger) Entries() []recommend.Interaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]recommend.Interaction, len(l.entries))
	copy(out, l.entries)
	return out
}
