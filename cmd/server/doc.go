// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Command server runs the Marquee recommendation API.

# Startup

  1. Configuration: defaults, optional YAML file, .env and environment (koanf v2)
  2. Logging: zerolog, JSON or console
  3. Database: DuckDB catalog, profiles, history and purchases; optional demo seed
  4. Interaction pipeline (optional): Badger sink, watermill transport, publisher, consumer
  5. Engine: DuckDB stores, each behind a gobreaker circuit breaker when enabled
  6. HTTP: chi router with CORS, per-IP rate limiting and Prometheus metrics
  7. Supervisor tree: consumer (data), publisher (messaging), HTTP server (api)

# Configuration

Common environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/marquee.duckdb
	SEED_DEMO_DATA=true
	LOG_LEVEL=debug
	LOG_FORMAT=console
	RECOMMEND_TIMEOUT=2s
	BREAKER_ENABLED=true
	INTERACTIONS_ENABLED=true
	INTERACTIONS_TRANSPORT=nats
	NATS_URL=nats://nats:4222
	CORS_ORIGINS=https://tickets.example.com

CONFIG_PATH points at a YAML file that is applied before the environment.

# Example

	SEED_DEMO_DATA=true INTERACTIONS_STORE_MEMORY=true DUCKDB_PATH=:memory: ./server

	curl -s localhost:8080/api/v1/recommendations/personalized?user_id=user-rocker
	curl -s -XPOST localhost:8080/api/v1/recommendations \
	    -d '{"mode":"similar","event_id":"evt-rock-1","limit":3}'

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
up to HTTP_SHUTDOWN_TIMEOUT, the publisher flushes its queue and the
stores are closed.
*/
package main
