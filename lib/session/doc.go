// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session ties the collaborative editing model together: one
// [Session] per connected editor tab, managed by a [Manager] that
// owns the wiring to presence, storage, slug validation, the render
// cache, and the broadcast bus.
//
// # Roles
//
// Joining a session tracks the connection in the presence registry
// and derives a role from join order: the first connection owns the
// editing lock, everyone else spectates. Ownership moves only when
// the owner leaves (voluntarily or via lock expiry) — there is no
// takeover. When the presence backend is unreachable, the manager
// fails open to a private local registry so a lone editor is never
// locked out of their own document; the resulting session is marked
// [State.FailedOpen] so the UI can show a degraded-collaboration
// notice.
//
// # Event flow
//
// Each session holds three subscriptions (session, document, and
// listing topics). The host's event loop reads them and hands every
// event to [Manager.Apply], which is the only place session state
// changes outside of explicit calls. Owners push edits with
// [Manager.Update] and persist with [Manager.Save]; spectators
// receive those edits as form deltas and saved notices.
//
// # Lock expiry
//
// An owner's session runs an expiration monitor on the injected
// clock: a warning event fires after 25 minutes of inactivity and
// the lock is surrendered at 30, the only involuntary ownership
// transfer in the model. Both thresholds and the poll interval are
// configurable.
package session
