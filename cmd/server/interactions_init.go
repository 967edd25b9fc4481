// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/interactions"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
)

// interactionPipeline holds the components of the interaction bus.
type interactionPipeline struct {
	transport *interactions.Transport
	sink      *interactions.BadgerSink
	publisher *interactions.Publisher
	consumer  *interactions.Consumer
}

// initInteractions opens the Badger sink and the configured transport.
func initInteractions(cfg *config.InteractionsConfig) (*interactionPipeline, error) {
	logger := logging.WithComponent("interactions")

	sink, err := interactions.OpenBadgerSink(interactions.BadgerSinkConfig{
		Path:      cfg.Store.Path,
		InMemory:  cfg.Store.InMemory,
		Retention: cfg.Store.Retention,
	})
	if err != nil {
		return nil, fmt.Errorf("open interaction store: %w", err)
	}

	transport, err := interactions.NewTransport(*cfg, interactions.NewWatermillLogger(logger))
	if err != nil {
		if cerr := sink.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close interaction store")
		}
		return nil, err
	}

	p := &interactionPipeline{
		transport: transport,
		sink:      sink,
		publisher: interactions.NewPublisher(transport.Publisher, interactions.PublisherConfig{
			Topic:         cfg.Topic,
			QueueSize:     cfg.QueueSize,
			RatePerSecond: cfg.RatePerSecond,
			Burst:         cfg.Burst,
		}, logger),
		consumer: interactions.NewConsumer(transport.Subscriber, cfg.Topic, sink, logger),
	}

	logger.Info().
		Str("transport", transport.Name).
		Str("topic", cfg.Topic).
		Bool("in_memory_store", cfg.Store.InMemory).
		Msg("Interaction pipeline initialized")
	return p, nil
}

// register adds the consumer to the data layer and the publisher to the
// messaging layer.
func (p *interactionPipeline) register(tree *supervisor.SupervisorTree) {
	tree.AddDataService(p.consumer)
	tree.AddMessagingService(p.publisher)
}

// Close releases the transport before the sink. Call it after the tree
// has stopped.
func (p *interactionPipeline) Close() {
	if err := p.transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing interaction transport")
	}
	if err := p.sink.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing interaction store")
	}
}
