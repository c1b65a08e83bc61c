// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package presence

import (
	"errors"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// User is the identity attached to a presence entry, displayed to
// other participants ("alice@example.com is editing").
type User struct {
	// ID is the host application's stable user identifier.
	ID string

	// Email is the display identity shown to other participants.
	Email string
}

// Entry is one connected viewer of an edit session. Entries are
// created by Track, updated (snapshot only) by their own connection,
// and removed by Untrack or connection teardown.
type Entry struct {
	// Connection identifies the browser tab that owns this entry.
	Connection ref.ConnectionID

	// User is the person behind the connection.
	User User

	// JoinToken is the registry-assigned ordering token. Strictly
	// increasing across all Track calls, so join order is total and
	// ownership ties cannot occur.
	JoinToken uint64

	// Snapshot is the owner's last pushed form snapshot (CBOR), used
	// to bootstrap late-joining spectators. Nil for spectators and
	// for owners that have not edited yet.
	Snapshot []byte
}

// TrackResult reports whether Track created a new entry or found the
// connection already registered.
type TrackResult int

const (
	// Tracked means a new entry was created.
	Tracked TrackResult = iota

	// AlreadyTracked means the connection was already registered
	// under this session key. Not an error — reconnecting clients
	// re-run their join path on reconnect.
	AlreadyTracked
)

// ErrNotTracked is returned by UpdateSnapshot when the connection has
// no entry under the session key. Callers treat it as a signal to
// re-join, not as a failure.
var ErrNotTracked = errors.New("presence: connection not tracked")

// Registry is the shared who-is-editing table. The memory
// implementation in this package is process-local; a clustered
// deployment substitutes a replicated implementation behind the same
// interface.
//
// Registry operations may fail when the backend is unavailable. The
// session layer is responsible for the fail-open fallback (a private
// local registry) — implementations just report the error.
type Registry interface {
	// Track registers a connection under a session key. Idempotent:
	// tracking an already-tracked connection returns AlreadyTracked
	// and leaves the existing entry (and its join token) untouched.
	Track(key ref.SessionKey, connection ref.ConnectionID, user User) (TrackResult, error)

	// Untrack removes a connection's entry. Removing an absent entry
	// is a no-op.
	Untrack(key ref.SessionKey, connection ref.ConnectionID) error

	// List returns the session's entries ordered by join token
	// ascending. The slice is a copy; callers may retain it.
	List(key ref.SessionKey) ([]Entry, error)

	// UpdateSnapshot stores the connection's form snapshot in its own
	// entry. Returns ErrNotTracked if the connection has no entry.
	// A connection can only ever write its own entry.
	UpdateSnapshot(key ref.SessionKey, connection ref.ConnectionID, snapshot []byte) error
}
