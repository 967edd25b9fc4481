// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto at
package init and exposed by the HTTP server at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Requests by method, route pattern and status code (counter)
  - api_request_duration_seconds: Request latency by method and route (histogram)
  - api_active_requests: In-flight requests (gauge)

Recommendation Metrics:
  - recommend_requests_total: Requests by mode and outcome (counter)
  - recommend_duration_seconds: Engine latency by mode (histogram)
  - recommend_results: Result count per successful request (histogram)
  - recommend_spend_fallback_total: Profiles built on the fallback spend (counter)
  - recommend_forecast_lookups_in_flight: Concurrent historical lookups (gauge)

Interaction Metrics:
  - interactions_published_total, interactions_dropped_total{reason}
  - interactions_persisted_total{interaction_type}, interaction_sink_errors_total{stage}
  - interaction_queue_depth

Store Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "events", time.Since(start), err)

Label values are bounded enumerations. Error messages are never used as
labels.
*/
package metrics
