// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"io"
	"log/slog"
	"sync"
)

// defaultBufferSize is the per-subscription channel capacity. Form
// deltas arrive at human typing cadence; 16 absorbs a UI stall of a
// few seconds before messages start dropping.
const defaultBufferSize = 16

// Config holds the parameters for creating a Bus. The zero value is
// usable.
type Config struct {
	// BufferSize is the per-subscription channel capacity. Defaults
	// to 16 if zero or negative.
	BufferSize int

	// Logger receives drop diagnostics. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Bus is an in-process topic-based publish/subscribe hub. Safe for
// concurrent use.
type Bus struct {
	logger     *slog.Logger
	bufferSize int

	mu     sync.Mutex
	topics map[string][]*Subscription
}

// NewBus creates a Bus.
func NewBus(cfg Config) *Bus {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		logger:     logger,
		bufferSize: bufferSize,
		topics:     make(map[string][]*Subscription),
	}
}

// Subscription is one subscriber's view of a topic. Read messages
// from C. Cancel when done — an abandoned subscription leaks and,
// once its buffer fills, silently swallows its copy of every publish.
type Subscription struct {
	// C delivers messages in publish order.
	C <-chan any

	bus       *Bus
	topic     string
	channel   chan any
	cancelled bool
}

// Subscribe registers a new subscriber on a topic. Messages published
// after Subscribe returns are delivered; earlier messages are not
// replayed.
func (b *Bus) Subscribe(topic string) *Subscription {
	channel := make(chan any, b.bufferSize)
	subscription := &Subscription{
		C:       channel,
		bus:     b,
		topic:   topic,
		channel: channel,
	}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], subscription)
	b.mu.Unlock()

	return subscription
}

// Publish delivers message to every current subscriber of the topic.
// Non-blocking: a subscriber whose buffer is full loses this message.
// Publishing to a topic with no subscribers is a no-op.
func (b *Bus) Publish(topic string, message any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subscription := range b.topics[topic] {
		select {
		case subscription.channel <- message:
		default:
			b.logger.Debug("pubsub: dropping message for slow subscriber",
				"topic", topic,
			)
		}
	}
}

// SubscriberCount returns the number of active subscriptions on a
// topic. Used by tests and by the session manager's leak checks.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

// Cancel removes the subscription from its topic and closes C.
// Idempotent. After Cancel, ranging over C terminates once the buffer
// drains.
func (s *Subscription) Cancel() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.cancelled {
		return
	}
	s.cancelled = true

	remaining := b.topics[s.topic][:0]
	for _, subscription := range b.topics[s.topic] {
		if subscription != s {
			remaining = append(remaining, subscription)
		}
	}
	if len(remaining) == 0 {
		delete(b.topics, s.topic)
	} else {
		b.topics[s.topic] = remaining
	}
	close(s.channel)
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string { return s.topic }
