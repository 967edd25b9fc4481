// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package interactions carries user interactions from the engine and the API
to durable storage without blocking either.

# Flow

	LogInteraction ──► Publisher queue ──► watermill Publisher ──► topic
	                                                                 │
	BadgerSink ◄── Consumer ◄── watermill Subscriber ◄───────────────┘

Publisher.LogInteraction never waits: it drops the interaction when the
rate limiter refuses it or the bounded queue is full. The publisher's Serve
loop drains the queue into the bus. Both Publisher and Consumer implement
suture.Service.

# Transports

NewTransport builds the bus from config:
  - gochannel: in-process watermill pub/sub (default)
  - nats: core NATS through watermill-nats with JetStream disabled

# Storage

BadgerSink stores one JSON record per interaction under
interaction:<unix-nano>:<uuid>, so keys sort by arrival time. Records
expire after the configured retention. Stats aggregates counts by
interaction type and source without exposing user IDs.
*/
package interactions
