// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// defaultNackBackoff delays the next message after a sink failure.
const defaultNackBackoff = 500 * time.Millisecond

// Consumer reads interactions from the bus and appends them to a Sink.
type Consumer struct {
	sub         message.Subscriber
	topic       string
	sink        Sink
	logger      zerolog.Logger
	nackBackoff time.Duration
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(sub message.Subscriber, topic string, sink Sink, logger zerolog.Logger) *Consumer {
	return &Consumer{
		sub:         sub,
		topic:       topic,
		sink:        sink,
		logger:      logger.With().Str("component", "interaction-consumer").Logger(),
		nackBackoff: defaultNackBackoff,
	}
}

// Serve implements suture.Service. A closed subscription before shutdown is
// returned as an error so the supervisor restarts the consumer.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info().Str("topic", c.topic).Msg("Interaction consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Interaction consumer stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", c.topic)
			}
			c.handle(ctx, msg)
		}
	}
}

// handle acks malformed and persisted messages and nacks sink failures.
func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	it, err := Decode(msg)
	if err != nil {
		metrics.RecordInteractionSinkError("decode")
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed interaction")
		msg.Ack()
		return
	}

	if err := c.sink.Append(ctx, it); err != nil {
		metrics.RecordInteractionSinkError("write")
		if errors.Is(err, context.Canceled) {
			msg.Nack()
			return
		}
		c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Failed to persist interaction")
		msg.Nack()
		select {
		case <-ctx.Done():
		case <-time.After(c.nackBackoff):
		}
		return
	}

	metrics.RecordInteractionPersisted(string(it.Type))
	msg.Ack()
}

// String implements fmt.Stringer for suture logging.
func (c *Consumer) String() string {
	return "interaction-consumer"
}
