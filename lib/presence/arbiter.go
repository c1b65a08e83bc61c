// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package presence

import "github.com/bureau-foundation/pressroom/lib/ref"

// Role is a connection's standing within an edit session.
type Role int

const (
	// Spectator has a read-only, live-synchronized view.
	Spectator Role = iota

	// Owner holds the editing lock: the only connection permitted to
	// mutate the form and save.
	Owner
)

// String returns "owner" or "spectator".
func (r Role) String() string {
	if r == Owner {
		return "owner"
	}
	return "spectator"
}

// Assignment is the arbiter's verdict for one connection: its role,
// the owner's entry (for spectators to display who holds the lock and
// to bootstrap from the owner's snapshot), and the full participant
// list.
type Assignment struct {
	Role    Role
	Owner   Entry
	Entries []Entry
}

// Arbitrate derives a connection's role from a session's join-ordered
// entry list. The rule is the entire locking protocol: the first
// entry owns the lock. Join tokens are strictly increasing, so there
// is never a tie.
//
// An empty entry list (or a connection not present in it — a race
// with its own untrack) yields a Spectator assignment with a zero
// Owner, which the session layer treats as "re-join required".
func Arbitrate(entries []Entry, connection ref.ConnectionID) Assignment {
	if len(entries) == 0 {
		return Assignment{Role: Spectator}
	}

	owner := entries[0]
	role := Spectator
	if owner.Connection == connection {
		role = Owner
	}
	return Assignment{
		Role:    role,
		Owner:   owner,
		Entries: entries,
	}
}
