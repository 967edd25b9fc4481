// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived services under suture v4.

# Tree

	marquee
	├── data-layer
	│   └── interaction-consumer   (bus subscriber -> Badger sink)
	├── messaging-layer
	│   └── interaction-publisher  (bounded queue -> watermill publisher)
	└── api-layer
	    └── http-server

Each layer is its own suture.Supervisor, so a publisher that keeps failing
backs off inside messaging-layer while the HTTP server keeps serving.

# Services

Anything with Serve(ctx context.Context) error can be added. A service
should block until ctx is done and then return ctx.Err(); any other
return value is treated as a failure and the service is restarted.

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog. cmd/server passes a slog logger backed by zerolog:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddDataService(consumer)
	tree.AddMessagingService(publisher)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)

# Configuration

	SUPERVISOR_FAILURE_THRESHOLD  failures before backoff (default 5)
	SUPERVISOR_FAILURE_DECAY      decay half-life in seconds (default 30)
	SUPERVISOR_FAILURE_BACKOFF    backoff duration (default 15s)
	SUPERVISOR_SHUTDOWN_TIMEOUT   per-service stop timeout (default 10s)
*/
package supervisor
