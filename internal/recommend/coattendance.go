// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"
)

// EventCount pairs an event ID with a tally.
type EventCount struct {
	EventID string
	Count   int
}

// TallyCoAttendance counts, per event, the distinct users in records who
// attended it. Records for sourceID are ignored. The result is sorted by
// count descending, then event ID ascending, and truncated to k when k > 0.
func TallyCoAttendance(sourceID string, records []AttendanceRecord, k int) []EventCount {
	attendees := make(map[string]map[string]struct{})
	for _, r := range records {
		if r.EventID == sourceID || r.EventID == "" {
			continue
		}
		users, ok := attendees[r.EventID]
		if !ok {
			users = make(map[string]struct{})
			attendees[r.EventID] = users
		}
		users[r.UserID] = struct{}{}
	}

	counts := make([]EventCount, 0, len(attendees))
	for id, users := range attendees {
		counts = append(counts, EventCount{EventID: id, Count: len(users)})
	}
	return rankCounts(counts, k)
}

// rankCounts sorts by count descending, ties by event ID ascending.
func rankCounts(counts []EventCount, k int) []EventCount {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].EventID < counts[j].EventID
	})
	if k > 0 && len(counts) > k {
		counts = counts[:k]
	}
	return counts
}
