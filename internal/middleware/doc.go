// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP instrumentation shared by the API router.

PrometheusMetrics wraps a chi router or sub-router and records:

  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

The endpoint label is the matched chi route pattern rather than the raw
path, which keeps label cardinality bounded by the route table:

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Get("/api/v1/events/{eventID}/similar", h.Similar)

Requests that match no route are labelled "unmatched".
*/
package middleware
