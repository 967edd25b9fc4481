// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides centralized configuration management for Marquee.

Configuration is loaded in layers with koanf. Each layer overrides the one
before it:

 1. Built-in defaults (defaultConfig)
 2. A YAML file from CONFIG_PATH, ./config.yaml or /etc/marquee/config.yaml
 3. Environment variables, after an optional .env file has been merged

# Sections

  - server: HTTP listener and timeouts (HTTP_PORT, HTTP_HOST, ENVIRONMENT)
  - database: DuckDB path, memory, threads and query timeout (DUCKDB_*)
  - logging: zerolog level, format and caller (LOG_LEVEL, LOG_FORMAT)
  - recommend: engine limits, fallbacks, windows and circuit breaker
    (RECOMMEND_*, BREAKER_*)
  - interactions: publisher queue, transport and Badger sink
    (INTERACTIONS_*, NATS_*)
  - security: CORS origins and per-IP rate limit (CORS_ORIGINS, RATE_LIMIT_*)
  - supervisor: suture restart policy (SUPERVISOR_*)

Scoring weights are not configurable.

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Recommend.ToEngineConfig()
*/
package config
