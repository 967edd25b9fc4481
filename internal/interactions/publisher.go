// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package interactions

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	Topic string

	// QueueSize bounds the interactions waiting to be published.
	QueueSize int

	// RatePerSecond and Burst throttle LogInteraction. 0 disables throttling.
	RatePerSecond float64
	Burst         int
}

// Publisher is a fire-and-forget recommend.InteractionLogger. Interactions
// are queued by LogInteraction and published by Serve.
type Publisher struct {
	pub     message.Publisher
	topic   string
	queue   chan recommend.Interaction
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time
	closed  atomic.Bool
}

// NewPublisher creates a Publisher that drains into pub.
func NewPublisher(pub message.Publisher, cfg PublisherConfig, logger zerolog.Logger) *Publisher {
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	p := &Publisher{
		pub:    pub,
		topic:  cfg.Topic,
		queue:  make(chan recommend.Interaction, size),
		logger: logger.With().Str("component", "interaction-publisher").Logger(),
		now:    time.Now,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return p
}

// LogInteraction implements recommend.InteractionLogger. It never blocks.
func (p *Publisher) LogInteraction(it recommend.Interaction) {
	if p.closed.Load() {
		metrics.RecordInteractionDropped("closed")
		return
	}
	if p.limiter != nil && !p.limiter.Allow() {
		metrics.RecordInteractionDropped("rate_limited")
		return
	}
	if it.OccurredAt.IsZero() {
		it.OccurredAt = p.now().UTC()
	}

	select {
	case p.queue <- it:
		metrics.SetInteractionQueueDepth(len(p.queue))
	default:
		metrics.RecordInteractionDropped("queue_full")
	}
}

// Pending returns the number of queued interactions.
func (p *Publisher) Pending() int {
	return len(p.queue)
}

// Serve implements suture.Service. On shutdown it publishes whatever is
// already queued, then stops accepting new interactions.
func (p *Publisher) Serve(ctx context.Context) error {
	p.closed.Store(false)
	p.logger.Info().Str("topic", p.topic).Int("queue_size", cap(p.queue)).Msg("Interaction publisher started")

	for {
		select {
		case <-ctx.Done():
			p.closed.Store(true)
			p.drain()
			p.logger.Info().Msg("Interaction publisher stopped")
			return ctx.Err()
		case it := <-p.queue:
			metrics.SetInteractionQueueDepth(len(p.queue))
			p.publish(it)
		}
	}
}

// drain publishes the backlog without waiting for new entries.
func (p *Publisher) drain() {
	for {
		select {
		case it := <-p.queue:
			p.publish(it)
		default:
			metrics.SetInteractionQueueDepth(0)
			return
		}
	}
}

func (p *Publisher) publish(it recommend.Interaction) {
	msg, err := Encode(it)
	if err != nil {
		metrics.RecordInteractionDropped("publish_error")
		p.logger.Error().Err(err).Msg("Failed to encode interaction")
		return
	}
	if err := p.pub.Publish(p.topic, msg); err != nil {
		metrics.RecordInteractionDropped("publish_error")
		p.logger.Warn().Err(err).Str("event_id", it.EventID).Msg("Failed to publish interaction")
		return
	}
	metrics.RecordInteractionPublished()
}

// String implements fmt.Stringer for suture logging.
func (p *Publisher) String() string {
	return "interaction-publisher"
}

var _ recommend.InteractionLogger = (*Publisher)(nil)
