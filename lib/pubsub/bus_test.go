// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pubsub

import (
	"testing"
	"time"

	"github.com/bureau-foundation/pressroom/lib/testutil"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(Config{})
	subscription := bus.Subscribe("session:blog/slug/post")
	defer subscription.Cancel()

	for i := 0; i < 5; i++ {
		bus.Publish("session:blog/slug/post", i)
	}

	for want := 0; want < 5; want++ {
		got := testutil.RequireReceive(t, subscription.C, 5*time.Second, "published message")
		if got != want {
			t.Errorf("message = %v, want %v", got, want)
		}
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus(Config{})
	first := bus.Subscribe("topic")
	second := bus.Subscribe("topic")
	defer first.Cancel()
	defer second.Cancel()

	bus.Publish("topic", "hello")

	if got := testutil.RequireReceive(t, first.C, 5*time.Second, "first copy"); got != "hello" {
		t.Errorf("first = %v", got)
	}
	if got := testutil.RequireReceive(t, second.C, 5*time.Second, "second copy"); got != "hello" {
		t.Errorf("second = %v", got)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus(Config{})
	subscription := bus.Subscribe("document:blog/a")
	defer subscription.Cancel()

	bus.Publish("document:blog/b", "wrong topic")

	testutil.RequireNoReceive(t, subscription.C, 100*time.Millisecond, "cross-topic message")
}

func TestSlowSubscriberDropsNewest(t *testing.T) {
	bus := NewBus(Config{BufferSize: 2})
	subscription := bus.Subscribe("topic")
	defer subscription.Cancel()

	bus.Publish("topic", 1)
	bus.Publish("topic", 2)
	bus.Publish("topic", 3) // buffer full, dropped

	if got := testutil.RequireReceive(t, subscription.C, 5*time.Second, "first"); got != 1 {
		t.Errorf("first = %v, want 1", got)
	}
	if got := testutil.RequireReceive(t, subscription.C, 5*time.Second, "second"); got != 2 {
		t.Errorf("second = %v, want 2", got)
	}
	testutil.RequireNoReceive(t, subscription.C, 100*time.Millisecond, "dropped message")
}

func TestCancelStopsDeliveryAndClosesChannel(t *testing.T) {
	bus := NewBus(Config{})
	subscription := bus.Subscribe("topic")
	subscription.Cancel()

	bus.Publish("topic", "after cancel")

	if _, ok := <-subscription.C; ok {
		t.Error("cancelled subscription received a message")
	}
	if count := bus.SubscriberCount("topic"); count != 0 {
		t.Errorf("SubscriberCount = %d, want 0", count)
	}
}

func TestCancelIdempotent(t *testing.T) {
	bus := NewBus(Config{})
	subscription := bus.Subscribe("topic")
	subscription.Cancel()
	subscription.Cancel() // must not panic on double close
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(Config{})
	// Must not panic or block.
	bus.Publish("nobody-home", "hello")
}
