// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend ranks and annotates upcoming events for a caller.
//
// # Architecture
//
// A Request names one of five modes. The Engine builds the inputs the mode
// needs from the collaborator stores and hands them to exactly one component:
//
//   - personalized: ProfileBuilder -> ScoreAffinity
//   - similar: RankSimilar against the source event
//   - collaborative: TallyCoAttendance over attendance records
//   - trending: TallyVelocity over the trailing purchase window
//   - demand_forecast: Forecaster, one bounded fan-out of historical lookups
//
// Scoring functions are pure. Everything that touches a store lives in the
// Engine, ProfileBuilder, or Forecaster and takes the request context.
//
// # State
//
// The package holds no caches. InterestModel and every intermediate map are
// built per request and dropped when it returns, so concurrent callers never
// observe one another.
//
// # Ordering
//
// Rankings are deterministic for an unchanged store snapshot:
//
//   - affinity and similarity ties keep catalog fetch order (stable sort)
//   - co-attendance and trending ties are broken by event ID ascending
//   - forecasts keep the catalog order (start time, then ID)
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.Collaborators{
//	    Catalog:   catalog,
//	    Profiles:  profiles,
//	    History:   history,
//	    Purchases: purchases,
//	}, logger)
//	resp, err := engine.Recommend(ctx, recommend.Request{Mode: recommend.ModePersonalized, UserID: "u1"})
package recommend
