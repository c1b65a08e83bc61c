// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package broadcast is the typed event layer over the pub/sub bus.
//
// Three topic families carry everything the editor UI reacts to:
//
//   - session:<key> — form synchronization within one edit session:
//     meta and content deltas from the owner, join/leave/save
//     notices, lock warnings.
//   - document:<group>/<id> — version and translation lifecycle,
//     consumed by every open session of the document regardless of
//     which language or version it views.
//   - listing:<group> — who-is-editing signals for dashboards.
//
// Delivery inherits the bus contract: fire-and-forget, at most once,
// drop-on-full. Nothing in the editing model depends on a broadcast
// arriving — every receiver can reconstruct its state from the store.
//
// [Broadcaster.FormChange] is the one guarded publish: form deltas
// are only accepted from the session's current lock owner, checked
// against the presence registry at publish time. A delta from anyone
// else is dropped without error, so a demoted tab that keeps typing
// cannot corrupt spectators.
package broadcast
