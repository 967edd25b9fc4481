// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/recommendtest"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func newStore() *recommendtest.MemoryStore {
	store := recommendtest.NewMemoryStore()
	store.AddEvents(recommend.Event{
		ID:       "e1",
		Genres:   []string{"rock"},
		VenueID:  "v1",
		Capacity: 100,
		StartsAt: testNow.Add(24 * time.Hour),
		Status:   recommend.StatusPublished,
	})
	return store
}

func TestWrap_PassesThrough(t *testing.T) {
	store := newStore()
	stores := Wrap(store.Collaborators(), testSettings())
	ctx := context.Background()

	events, err := stores.Catalog.ListUpcomingPublished(ctx, testNow, 10)
	if err != nil {
		t.Fatalf("ListUpcomingPublished() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != "e1" {
		t.Errorf("events = %+v", events)
	}

	prefs, err := stores.Profiles.GetPreferences(ctx, "nobody")
	if err != nil || prefs != nil {
		t.Errorf("GetPreferences() = %+v, %v; want nil, nil", prefs, err)
	}

	if got := store.Calls(recommendtest.MethodListUpcomingPublished); got != 1 {
		t.Errorf("underlying calls = %d, want 1", got)
	}
}

func TestStores_Breakers(t *testing.T) {
	stores := Wrap(newStore().Collaborators(), testSettings())

	want := []string{CatalogBreaker, ProfilesBreaker, HistoryBreaker, PurchasesBreaker}
	got := stores.Breakers()
	if len(got) != len(want) {
		t.Fatalf("Breakers() returned %d breakers, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.Name() != want[i] {
			t.Errorf("Breakers()[%d].Name() = %q, want %q", i, b.Name(), want[i])
		}
		if b.State() != gobreaker.StateClosed {
			t.Errorf("%s initial state = %v, want closed", b.Name(), b.State())
		}
	}
	if got[0] != stores.Catalog.breaker {
		t.Error("Breakers() should return the breakers guarding the stores")
	}
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	store := newStore()
	failure := errors.New("connection refused")
	store.FailOn(recommendtest.MethodGetEvent, failure)
	stores := Wrap(store.Collaborators(), testSettings())
	ctx := context.Background()

	rejectedBefore := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(CatalogBreaker, "rejected"))

	for i := 0; i < 3; i++ {
		if _, err := stores.Catalog.GetEvent(ctx, "e1"); !errors.Is(err, failure) {
			t.Fatalf("call %d error = %v, want underlying failure", i, err)
		}
	}

	_, err := stores.Catalog.GetEvent(ctx, "e1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("error after trip = %v, want ErrOpenState", err)
	}
	if !IsRejected(err) {
		t.Error("IsRejected() = false for open-state error")
	}
	if got := store.Calls(recommendtest.MethodGetEvent); got != 3 {
		t.Errorf("underlying calls = %d, want 3", got)
	}
	if stores.Catalog.breaker.State() != gobreaker.StateOpen {
		t.Errorf("state = %v, want open", stores.Catalog.breaker.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(CatalogBreaker)); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	rejectedAfter := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues(CatalogBreaker, "rejected"))
	if rejectedAfter-rejectedBefore != 1 {
		t.Errorf("rejected delta = %v, want 1", rejectedAfter-rejectedBefore)
	}

	// Other stores keep their own breaker.
	if _, err := stores.History.ListAttendees(ctx, "e1"); err != nil {
		t.Errorf("ListAttendees() error = %v, want nil while catalog is open", err)
	}
}

func TestBreaker_IgnoresNotFoundAndCancellation(t *testing.T) {
	store := newStore()
	stores := Wrap(store.Collaborators(), testSettings())

	for i := 0; i < 5; i++ {
		_, err := stores.Catalog.GetEvent(context.Background(), "missing")
		if !errors.Is(err, recommend.ErrNotFound) {
			t.Fatalf("GetEvent(missing) error = %v, want ErrNotFound", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		if _, err := stores.Catalog.ListUpcomingPublished(ctx, testNow, 10); !errors.Is(err, context.Canceled) {
			t.Fatalf("canceled call error = %v, want context.Canceled", err)
		}
	}

	if got := stores.Catalog.breaker.State(); got != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestIsSuccessful(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"not found", recommend.ErrNotFound, true},
		{"wrapped not found", errors.Join(errors.New("event x"), recommend.ErrNotFound), true},
		{"canceled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, false},
		{"driver error", errors.New("io error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSuccessful(tt.err); got != tt.want {
				t.Errorf("isSuccessful(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestEngineReportsOpenBreakerAsUnavailable(t *testing.T) {
	store := newStore()
	store.FailOn(recommendtest.MethodListUpcomingPublished, errors.New("disk full"))
	stores := Wrap(store.Collaborators(), testSettings())

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), stores.Collaborators(nil), zerolog.Nop(),
		recommend.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	req := recommend.Request{Mode: recommend.ModePersonalized, UserID: "u1"}
	for i := 0; i < 4; i++ {
		_, err := engine.Recommend(context.Background(), req)
		if kind := recommend.KindOf(err); kind != recommend.KindServiceUnavailable {
			t.Fatalf("call %d kind = %v, want service_unavailable (err %v)", i, kind, err)
		}
	}
	if !errors.Is(func() error {
		_, err := engine.Recommend(context.Background(), req)
		return err
	}(), gobreaker.ErrOpenState) {
		t.Error("expected open breaker to surface through the engine error chain")
	}
}
