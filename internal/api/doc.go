// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api exposes the recommendation engine and the interaction pipeline
over HTTP using the chi router.

Routes:

	POST /api/v1/recommendations                  mode-dispatched body
	GET  /api/v1/recommendations/personalized     ?user_id=&limit=
	GET  /api/v1/recommendations/trending         ?limit=
	GET  /api/v1/recommendations/forecast         ?limit=
	GET  /api/v1/events/{eventID}/similar         ?limit=
	GET  /api/v1/events/{eventID}/also-attended   ?limit=
	POST /api/v1/interactions                     202, fire-and-forget
	GET  /api/v1/interactions/stats
	GET  /health/live
	GET  /health/ready
	GET  /metrics

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", ...}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Engine error kinds map to statuses: invalid request to 400 BAD_REQUEST,
not found to 404 NOT_FOUND and service unavailable to 503
SERVICE_UNAVAILABLE. Bodies failing struct validation get 400
VALIDATION_FAILED with per-field details.

Middleware order: request id and logging context, RealIP, Recoverer, CORS.
The /api/v1 group adds a per-IP httprate limit and Prometheus
instrumentation.
*/
package api
