// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"
)

// Reason strings attached to affinity results.
const (
	reasonLovePrefix = "You love "
	reasonVenue      = "Venue you've enjoyed"
)

// AffinityScore scores one event against the model and returns the reasons
// that explain it, at most MaxReasons, in the order they were earned.
func AffinityScore(model *InterestModel, e *Event) (float64, []string) {
	var score float64
	reasons := make([]string, 0, MaxReasons)

	addReason := func(r string) {
		if len(reasons) < MaxReasons {
			reasons = append(reasons, r)
		}
	}

	for _, genre := range uniqueGenres(e.Genres) {
		weight, ok := model.GenreWeights[genre]
		if !ok {
			continue
		}
		score += weight * GenreScoreMultiplier
		if weight >= LoveReasonThreshold {
			addReason(reasonLovePrefix + genre)
		}
	}

	if weight, ok := model.VenueWeights[e.VenueID]; ok && e.VenueID != "" {
		score += weight * VenueScoreMultiplier
		addReason(reasonVenue)
	}

	if minPrice, ok := e.MinPrice(); ok && minPrice <= PriceBonusSpendFactor*model.AverageSpend {
		score += PriceBonus
	}

	if score < 0 {
		score = 0
	}
	return score, reasons
}

// ScoreAffinity ranks candidates by affinity, highest first. Equal scores
// keep candidate order. The result is truncated to k when k > 0.
func ScoreAffinity(model *InterestModel, candidates []Event, k int) []RankedResult {
	results := make([]RankedResult, 0, len(candidates))
	for i := range candidates {
		score, reasons := AffinityScore(model, &candidates[i])
		results = append(results, RankedResult{
			Event:   candidates[i],
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return truncate(results, k)
}

// uniqueGenres drops repeated tags, keeping first occurrence order.
func uniqueGenres(genres []string) []string {
	if len(genres) < 2 {
		return genres
	}
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func truncate(results []RankedResult, k int) []RankedResult {
	if k > 0 && len(results) > k {
		return results[:k]
	}
	return results
}
