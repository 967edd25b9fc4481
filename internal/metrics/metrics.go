// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "success", "invalid_request", "not_found", "service_unavailable"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of results returned per recommendation",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	RecommendSpendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_spend_fallback_total",
			Help: "Profiles built with the fallback average spend",
		},
		[]string{"reason"}, // "no_purchases", "purchase_store_error"
	)

	ForecastLookupsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_forecast_lookups_in_flight",
			Help: "Historical lookups currently running for demand forecasts",
		},
	)

	// Interaction Pipeline Metrics
	InteractionsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interactions_published_total",
			Help: "Interactions published to the message bus",
		},
	)

	InteractionsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_dropped_total",
			Help: "Interactions dropped before reaching the bus",
		},
		[]string{"reason"}, // "queue_full", "rate_limited", "publish_error", "closed"
	)

	InteractionsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_persisted_total",
			Help: "Interactions written to the sink by type",
		},
		[]string{"interaction_type"},
	)

	InteractionSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_sink_errors_total",
			Help: "Interaction messages that failed to decode or persist",
		},
		[]string{"stage"}, // "decode", "write"
	)

	InteractionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interaction_queue_depth",
			Help: "Interactions waiting to be published",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, errorType(err)).Inc()
	}
}

// errorType buckets an error into a low-cardinality label value.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "query"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome of one recommendation request.
func RecordRecommendation(mode, outcome string, duration time.Duration, results int) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if outcome == "success" {
		RecommendResults.WithLabelValues(mode).Observe(float64(results))
	}
}

// RecordSpendFallback counts a profile that used the fallback spend.
func RecordSpendFallback(reason string) {
	RecommendSpendFallbacks.WithLabelValues(reason).Inc()
}

// TrackForecastLookup marks a historical lookup as running. Call the
// returned func when it finishes.
func TrackForecastLookup() func() {
	ForecastLookupsInFlight.Inc()
	return ForecastLookupsInFlight.Dec
}

// RecordInteractionPublished counts an interaction handed to the bus.
func RecordInteractionPublished() {
	InteractionsPublished.Inc()
}

// RecordInteractionDropped counts an interaction that never reached the bus.
func RecordInteractionDropped(reason string) {
	InteractionsDropped.WithLabelValues(reason).Inc()
}

// RecordInteractionPersisted counts an interaction written to the sink.
func RecordInteractionPersisted(interactionType string) {
	InteractionsPersisted.WithLabelValues(interactionType).Inc()
}

// RecordInteractionSinkError counts a consumer failure at stage.
func RecordInteractionSinkError(stage string) {
	InteractionSinkErrors.WithLabelValues(stage).Inc()
}

// SetInteractionQueueDepth updates the publisher backlog gauge.
func SetInteractionQueueDepth(depth int) {
	InteractionQueueDepth.Set(float64(depth))
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
