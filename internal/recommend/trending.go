// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"time"
)

// TallyVelocity counts completed purchases per event inside [start, end].
// Purchases outside the window or not completed are ignored, so an event
// with no qualifying purchase never appears. Sorted by count descending,
// then event ID ascending, truncated to k when k > 0.
func TallyVelocity(purchases []PurchaseRecord, start, end time.Time, k int) []EventCount {
	tally := make(map[string]int)
	for _, p := range purchases {
		if p.Status != PurchaseCompleted || p.EventID == "" {
			continue
		}
		if p.CompletedAt.Before(start) || p.CompletedAt.After(end) {
			continue
		}
		tally[p.EventID]++
	}

	counts := make([]EventCount, 0, len(tally))
	for id, n := range tally {
		counts = append(counts, EventCount{EventID: id, Count: n})
	}
	return rankCounts(counts, k)
}
