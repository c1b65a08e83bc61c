// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package presence tracks who is looking at a document right now and
// derives the editing lock from that.
//
// Each connected viewer (one per browser tab) registers an ephemeral
// entry under its edit-session key. Entries are ordered by a strictly
// increasing join token, and the lock arbiter's rule is all there is
// to the lock: the earliest surviving entry is the owner, everyone
// else is a spectator. There is no separate lock state to get out of
// sync with the registry — when the owner's entry disappears, the
// next entry in join order is the owner.
//
// Entries are single-writer: only the connection that created an
// entry updates it (its form snapshot for late-joining spectators).
// Nothing here is durable; a restart empties the registry.
package presence
