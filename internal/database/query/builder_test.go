// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package query

import (
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_AddTimeRange(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	from := time.Date(2026, 1, 1, 1, 0, 0, 0, loc)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		from, to  *time.Time
		inclusive bool
		want      string
		wantArgs  int
	}{
		{"exclusive lower", &from, &to, false, "starts_at > ? AND starts_at <= ?", 2},
		{"inclusive lower", &from, &to, true, "starts_at >= ? AND starts_at <= ?", 2},
		{"upper only", nil, &to, false, "starts_at <= ?", 1},
		{"neither", nil, nil, false, "1=1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder().AddTimeRange("starts_at", tt.from, tt.to, tt.inclusive)
			got, args := wb.Build()
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("args = %d, want %d", len(args), tt.wantArgs)
			}
			if tt.from != nil {
				bound, ok := args[0].(time.Time)
				if !ok || bound.Location() != time.UTC || !bound.Equal(from) {
					t.Errorf("lower bound %v should be %v in UTC", args[0], from)
				}
			}
		})
	}
}

func TestWhereBuilder_AddIn(t *testing.T) {
	wb := NewWhereBuilder().AddIn("g.genre", []string{"rock", "jazz"})
	got, args := wb.Build()
	if got != "g.genre IN (?, ?)" {
		t.Errorf("Build() = %q", got)
	}
	if len(args) != 2 || args[0] != "rock" || args[1] != "jazz" {
		t.Errorf("args = %v", args)
	}
}

func TestWhereBuilder_AddInEmptyMatchesNothing(t *testing.T) {
	got, args := NewWhereBuilder().AddIn("id", nil).Build()
	if got != "1=0" || len(args) != 0 {
		t.Errorf("Build() = %q %v, want 1=0 with no args", got, args)
	}
}

func TestWhereBuilder_Combined(t *testing.T) {
	wb := NewWhereBuilder().
		AddClause("status = ?", "published").
		AddNotEqual("event_id", "src").
		AddNotEqual("venue_id", "")

	got, args := wb.BuildWithPrefix()
	if got != "WHERE status = ? AND event_id <> ?" {
		t.Errorf("BuildWithPrefix() = %q", got)
	}
	if wb.Count() != 2 || len(args) != 2 {
		t.Errorf("count = %d args = %d, want 2/2", wb.Count(), len(args))
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := Placeholders(n); got != want {
			t.Errorf("Placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
