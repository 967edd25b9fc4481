// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/resilience"
)

// initEngine builds the engine over the DuckDB stores. With the breaker
// enabled each store gets its own circuit breaker. il may be nil.
func initEngine(cfg *config.Config, db *database.DB, il recommend.InteractionLogger) (*recommend.Engine, error) {
	stores := recommend.Collaborators{
		Catalog:   db,
		Profiles:  db,
		History:   db,
		Purchases: db,
	}

	collaborators := stores
	collaborators.Interactions = il
	if cfg.Recommend.Breaker.Enabled {
		wrapped := resilience.Wrap(stores, resilience.SettingsFromConfig(cfg.Recommend.Breaker))
		collaborators = wrapped.Collaborators(il)
		for _, b := range wrapped.Breakers() {
			logging.Info().Str("breaker", b.Name()).Str("state", b.State().String()).Msg("Circuit breaker ready")
		}
	}

	engine, err := recommend.NewEngine(cfg.Recommend.ToEngineConfig(), collaborators, logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	engineCfg := engine.Config()
	logging.Info().
		Int("candidate_limit", engineCfg.Limits.CandidateLimit).
		Dur("trending_window", engineCfg.Trending.Window).
		Dur("forecast_horizon", engineCfg.Forecast.Horizon).
		Dur("request_timeout", engineCfg.RequestTimeout).
		Bool("log_impressions", engineCfg.LogImpressions).
		Msg("Recommendation engine initialized")
	return engine, nil
}
