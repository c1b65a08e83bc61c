// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pubsub is an in-process topic bus with at-most-once,
// fire-and-forget delivery. It carries Pressroom's editing-session
// broadcasts: form deltas from an owner to spectators, save and
// version-lifecycle notifications, and who-is-editing events for
// listing dashboards.
//
// Delivery guarantees are deliberately weak and match what the
// consumers tolerate: per-topic publish order is preserved for each
// subscriber, but a subscriber that falls behind loses messages (its
// buffer drops the newest), and there is no ordering across topics
// and no acknowledgement. A late-joining spectator does not replay
// missed broadcasts — it bootstraps from the owner's form snapshot in
// the presence registry.
package pubsub
