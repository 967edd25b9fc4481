// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"math"
	"sort"
)

// Similarity scores candidate against source: SharedGenreScore per shared
// genre plus a price proximity term when both minimum prices are known.
//
// The score is not normalized by genre count, so two events sharing 2 of 2
// genres score the same as two sharing 2 of 10.
func Similarity(source, candidate *Event) float64 {
	sourceGenres := make(map[string]struct{}, len(source.Genres))
	for _, g := range source.Genres {
		sourceGenres[g] = struct{}{}
	}

	var shared int
	for _, g := range uniqueGenres(candidate.Genres) {
		if _, ok := sourceGenres[g]; ok {
			shared++
		}
	}
	score := float64(shared) * SharedGenreScore

	sourcePrice, okSource := source.MinPrice()
	candidatePrice, okCandidate := candidate.MinPrice()
	if okSource && okCandidate {
		proximity := PriceProximityMax - math.Abs(sourcePrice-candidatePrice)/PriceProximityDivisor
		score += math.Max(0, proximity)
	}

	return score
}

// RankSimilar ranks candidates by similarity to source, highest first.
// The source itself is skipped. Equal scores keep candidate order.
func RankSimilar(source *Event, candidates []Event, k int) []RankedResult {
	results := make([]RankedResult, 0, len(candidates))
	for i := range candidates {
		if candidates[i].ID == source.ID {
			continue
		}
		sim := Similarity(source, &candidates[i])
		results = append(results, RankedResult{
			Event:      candidates[i],
			Score:      sim,
			Reasons:    []string{},
			Similarity: &sim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return truncate(results, k)
}
