// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package interactions

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

var testTime = time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)

func sample(user, event string, typ recommend.InteractionType, source string) recommend.Interaction {
	return recommend.Interaction{UserID: user, EventID: event, Type: typ, Source: source, OccurredAt: testTime}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// recordingPublisher is a message.Publisher that keeps every message.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*message.Message
	err  error
}

func (r *recordingPublisher) Publish(_ string, msgs ...*message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func openTestSink(t *testing.T) *BadgerSink {
	t.Helper()
	sink, err := OpenBadgerSink(BadgerSinkConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadgerSink() error = %v", err)
	}
	t.Cleanup(func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return sink
}

func TestDecode(t *testing.T) {
	t.Parallel()

	valid, err := Encode(sample("u1", "e1", recommend.InteractionClicked, "similar"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := valid.Metadata.Get(MetadataType); got != "clicked" {
		t.Errorf("metadata %s = %q, want clicked", MetadataType, got)
	}
	it, err := Decode(valid)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(sample("u1", "e1", recommend.InteractionClicked, "similar"), it); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{oops`},
		{"missing user", `{"event_id":"e1","interaction_type":"viewed","occurred_at":"2026-04-02T18:30:00Z"}`},
		{"unknown type", `{"user_id":"u1","event_id":"e1","interaction_type":"liked","occurred_at":"2026-04-02T18:30:00Z"}`},
		{"missing time", `{"user_id":"u1","event_id":"e1","interaction_type":"viewed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(message.NewMessage(watermill.NewUUID(), []byte(tt.payload)))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	pub := NewPublisher(&recordingPublisher{}, PublisherConfig{Topic: "t", QueueSize: 2}, zerolog.Nop())
	before := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("queue_full"))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			pub.LogInteraction(sample("u1", "e1", recommend.InteractionViewed, "trending"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("LogInteraction blocked on a full queue")
	}

	if got := pub.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}
	after := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("queue_full"))
	if after-before != 3 {
		t.Errorf("queue_full drops = %v, want 3", after-before)
	}
}

func TestPublisher_RateLimited(t *testing.T) {
	pub := NewPublisher(&recordingPublisher{}, PublisherConfig{Topic: "t", QueueSize: 10, RatePerSecond: 0.001, Burst: 2}, zerolog.Nop())
	before := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("rate_limited"))

	for i := 0; i < 5; i++ {
		pub.LogInteraction(sample("u1", "e1", recommend.InteractionViewed, "trending"))
	}

	if got := pub.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want burst of 2", got)
	}
	after := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("rate_limited"))
	if after-before != 3 {
		t.Errorf("rate_limited drops = %v, want 3", after-before)
	}
}

func TestPublisher_ServePublishesAndDrains(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewPublisher(rec, PublisherConfig{Topic: "t", QueueSize: 10}, zerolog.Nop())
	pub.now = func() time.Time { return testTime }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pub.Serve(ctx) }()

	it := sample("u1", "e1", recommend.InteractionDismissed, "personalized")
	it.OccurredAt = time.Time{}
	pub.LogInteraction(it)
	pub.LogInteraction(sample("u2", "e2", recommend.InteractionViewed, "personalized"))
	waitFor(t, "two published messages", func() bool { return rec.count() == 2 })

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	decoded, err := Decode(rec.msgs[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !decoded.OccurredAt.Equal(testTime) {
		t.Errorf("OccurredAt = %v, want clock time %v", decoded.OccurredAt, testTime)
	}

	before := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("closed"))
	pub.LogInteraction(sample("u3", "e3", recommend.InteractionViewed, "trending"))
	if after := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("closed")); after-before != 1 {
		t.Errorf("closed drops = %v, want 1", after-before)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("bus down")}
	pub := NewPublisher(rec, PublisherConfig{Topic: "t", QueueSize: 10}, zerolog.Nop())
	before := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("publish_error"))

	pub.LogInteraction(sample("u1", "e1", recommend.InteractionViewed, "trending"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = pub.Serve(ctx) // drains the queued interaction on shutdown

	if after := testutil.ToFloat64(metrics.InteractionsDropped.WithLabelValues("publish_error")); after-before != 1 {
		t.Errorf("publish_error drops = %v, want 1", after-before)
	}
}

func TestBadgerSink_Stats(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()

	records := []recommend.Interaction{
		sample("u1", "e1", recommend.InteractionViewed, "personalized"),
		sample("u1", "e2", recommend.InteractionViewed, "personalized"),
		sample("u2", "e1", recommend.InteractionClicked, "similar"),
	}
	records[2].OccurredAt = testTime.Add(time.Hour)
	for _, r := range records {
		if err := sink.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	stats, err := sink.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	oldest, newest := testTime, testTime.Add(time.Hour)
	want := &Stats{
		Total:    3,
		ByType:   map[string]int{"viewed": 2, "clicked": 1},
		BySource: map[string]int{"personalized": 2, "similar": 1},
		Oldest:   &oldest,
		Newest:   &newest,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestBadgerSink_EmptyStats(t *testing.T) {
	sink := openTestSink(t)
	stats, err := sink.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 0 || stats.Oldest != nil || len(stats.ByType) != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
}

func TestRecordKeyOrdering(t *testing.T) {
	t.Parallel()
	earlier := string(recordKey(time.Unix(5, 0)))
	later := string(recordKey(time.Unix(40, 0)))
	if !strings.HasPrefix(earlier, keyPrefix) {
		t.Errorf("key %q lacks prefix %q", earlier, keyPrefix)
	}
	if earlier >= later {
		t.Errorf("keys not ordered by time: %q >= %q", earlier, later)
	}
}

// flakySink fails the first n appends.
type flakySink struct {
	mu       sync.Mutex
	failures int
	stored   []recommend.Interaction
}

func (f *flakySink) Append(_ context.Context, it recommend.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	f.stored = append(f.stored, it)
	return nil
}

func (f *flakySink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

func TestConsumer_AcksMalformedAndRetriesSinkFailures(t *testing.T) {
	logger := NewWatermillLogger(zerolog.Nop())
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16, Persistent: true}, logger)
	t.Cleanup(func() { _ = bus.Close() })

	sink := &flakySink{failures: 1}
	consumer := NewConsumer(bus, "interactions", sink, zerolog.Nop())
	consumer.nackBackoff = time.Millisecond

	decodeBefore := testutil.ToFloat64(metrics.InteractionSinkErrors.WithLabelValues("decode"))
	writeBefore := testutil.ToFloat64(metrics.InteractionSinkErrors.WithLabelValues("write"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Serve(ctx) }()

	if err := bus.Publish("interactions", message.NewMessage(watermill.NewUUID(), []byte("garbage"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	good, err := Encode(sample("u1", "e1", recommend.InteractionClicked, "collaborative"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := bus.Publish("interactions", good); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	waitFor(t, "redelivered interaction to be stored", func() bool { return sink.count() == 1 })
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}

	if d := testutil.ToFloat64(metrics.InteractionSinkErrors.WithLabelValues("decode")) - decodeBefore; d != 1 {
		t.Errorf("decode errors = %v, want 1", d)
	}
	if d := testutil.ToFloat64(metrics.InteractionSinkErrors.WithLabelValues("write")) - writeBefore; d != 1 {
		t.Errorf("write errors = %v, want 1", d)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	transport, err := NewTransport(config.InteractionsConfig{Transport: TransportGoChannel, ChannelBuffer: 16}, nil)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })

	sink := openTestSink(t)
	consumer := NewConsumer(transport.Subscriber, "interactions", sink, zerolog.Nop())
	publisher := NewPublisher(transport.Publisher, PublisherConfig{Topic: "interactions", QueueSize: 16}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = consumer.Serve(ctx) }()

	// The in-process bus drops messages published before the subscription
	// exists, so wait for the consumer to subscribe.
	waitFor(t, "consumer subscription", func() bool {
		warmup, _ := Encode(sample("warmup", "warmup", recommend.InteractionViewed, "warmup"))
		_ = transport.Publisher.Publish("interactions", warmup)
		stats, err := sink.Stats(context.Background())
		return err == nil && stats.Total > 0
	})
	go func() { defer wg.Done(); _ = publisher.Serve(ctx) }()

	publisher.LogInteraction(sample("u1", "e1", recommend.InteractionViewed, "trending"))
	publisher.LogInteraction(sample("u2", "e1", recommend.InteractionClicked, "trending"))

	waitFor(t, "interactions in sink", func() bool {
		stats, err := sink.Stats(context.Background())
		return err == nil && stats.BySource["trending"] == 2
	})

	cancel()
	wg.Wait()
}

func TestNewTransport(t *testing.T) {
	t.Parallel()

	tr, err := NewTransport(config.InteractionsConfig{Transport: TransportGoChannel}, nil)
	if err != nil {
		t.Fatalf("NewTransport(gochannel) error = %v", err)
	}
	if tr.Name != TransportGoChannel {
		t.Errorf("Name = %q", tr.Name)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := NewTransport(config.InteractionsConfig{Transport: "kafka"}, nil); err == nil {
		t.Error("NewTransport(kafka) error = nil, want error")
	}
}

func TestWatermillLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWatermillLogger(zerolog.New(&buf)).With(watermill.LogFields{"topic": "interactions"})
	logger.Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"topic":"interactions"`, `"attempt":2`, `"error":"boom"`, `"message":"publish failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}
