// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package broadcast

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/pubsub"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// Config holds the parameters for creating a Broadcaster.
type Config struct {
	// Bus carries the events. Required.
	Bus *pubsub.Bus

	// Registry is consulted on FormChange to verify the sender
	// still owns the lock. Required.
	Registry presence.Registry

	// Logger receives dropped-delta diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Broadcaster publishes typed events on the right topics. Safe for
// concurrent use.
type Broadcaster struct {
	bus      *pubsub.Bus
	registry presence.Registry
	logger   *slog.Logger
}

// New creates a Broadcaster.
func New(cfg Config) (*Broadcaster, error) {
	if cfg.Bus == nil {
		return nil, fmt.Errorf("broadcast: Bus is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("broadcast: Registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Broadcaster{bus: cfg.Bus, registry: cfg.Registry, logger: logger}, nil
}

// SubscribeSession subscribes to a session's form-sync topic.
func (b *Broadcaster) SubscribeSession(key ref.SessionKey) *pubsub.Subscription {
	return b.bus.Subscribe(SessionTopic(key))
}

// SubscribeDocument subscribes to a document's lifecycle topic.
func (b *Broadcaster) SubscribeDocument(group ref.Group, id ref.DocumentID) *pubsub.Subscription {
	return b.bus.Subscribe(DocumentTopic(group, id))
}

// SubscribeListing subscribes to a group's dashboard topic.
func (b *Broadcaster) SubscribeListing(group ref.Group) *pubsub.Subscription {
	return b.bus.Subscribe(ListingTopic(group))
}

// FormChange publishes a FormMeta or FormContent delta after checking
// that sender currently owns the session's lock. Deltas from anyone
// else are dropped silently: a tab demoted by lock expiry may keep
// emitting changes until its next round trip, and those must not
// reach spectators. Dropping is not an error — fire-and-forget all
// the way down.
func (b *Broadcaster) FormChange(key ref.SessionKey, sender ref.ConnectionID, event Event) {
	switch event.Kind() {
	case KindFormMeta, KindFormContent:
	default:
		b.logger.Warn("broadcast: non-form event passed to FormChange",
			"session", key.String(), "kind", string(event.Kind()))
		return
	}

	entries, err := b.registry.List(key)
	if err != nil {
		// Can't verify ownership, so the delta does not go out.
		// Spectators fall back to the next EditorSaved reload.
		b.logger.Warn("broadcast: dropping form delta, registry unavailable",
			"session", key.String(), "error", err)
		return
	}
	assignment := presence.Arbitrate(entries, sender)
	if assignment.Role != presence.Owner {
		b.logger.Debug("broadcast: dropping form delta from non-owner",
			"session", key.String(), "connection", sender.String())
		return
	}

	b.bus.Publish(SessionTopic(key), event)
}

// OwnerJoined announces a new lock owner on the session and listing
// topics.
func (b *Broadcaster) OwnerJoined(key ref.SessionKey, connection ref.ConnectionID, user presence.User) {
	event := EditorJoined{Session: key, Connection: connection, User: user}
	b.bus.Publish(SessionTopic(key), event)
	b.bus.Publish(ListingTopic(key.Group()), event)
}

// OwnerLeft announces the lock owner's departure on the session and
// listing topics.
func (b *Broadcaster) OwnerLeft(key ref.SessionKey, connection ref.ConnectionID, user presence.User, expired bool) {
	event := EditorLeft{Session: key, Connection: connection, User: user, Expired: expired}
	b.bus.Publish(SessionTopic(key), event)
	b.bus.Publish(ListingTopic(key.Group()), event)
}

// Saved tells the session's spectators to reload the saved cell.
func (b *Broadcaster) Saved(key ref.SessionKey, language ref.Language, version ref.Version) {
	b.bus.Publish(SessionTopic(key), EditorSaved{Session: key, Language: language, Version: version})
}

// Warn delivers a lock-expiry warning on the session topic.
func (b *Broadcaster) Warn(event LockWarning) {
	b.bus.Publish(SessionTopic(event.Session), event)
}

// DocumentEvent publishes a lifecycle event on the document topic.
// Accepts VersionCreated, VersionDeleted, VersionPublished, and
// TranslationCreated.
func (b *Broadcaster) DocumentEvent(group ref.Group, id ref.DocumentID, event Event) {
	b.bus.Publish(DocumentTopic(group, id), event)
}
