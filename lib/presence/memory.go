// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package presence

import (
	"sync"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// MemoryRegistry is the process-local Registry implementation: a
// mutex-guarded map from session key to its join-ordered entry list.
// It never returns an error from any operation.
//
// A fresh private MemoryRegistry also serves as the fail-open
// fallback when a shared registry backend is unreachable: the local
// connection becomes the sole entry and therefore the owner.
type MemoryRegistry struct {
	mu        sync.Mutex
	sessions  map[string][]Entry
	joinToken uint64
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string][]Entry)}
}

// Track registers a connection. The join token is allocated under the
// registry lock, so join order is strictly total even when many
// connections race to join the same session.
func (r *MemoryRegistry) Track(key ref.SessionKey, connection ref.ConnectionID, user User) (TrackResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic := key.String()
	for _, entry := range r.sessions[topic] {
		if entry.Connection == connection {
			return AlreadyTracked, nil
		}
	}

	r.joinToken++
	r.sessions[topic] = append(r.sessions[topic], Entry{
		Connection: connection,
		User:       user,
		JoinToken:  r.joinToken,
	})
	return Tracked, nil
}

// Untrack removes a connection's entry, if present.
func (r *MemoryRegistry) Untrack(key ref.SessionKey, connection ref.ConnectionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic := key.String()
	entries := r.sessions[topic]
	for i, entry := range entries {
		if entry.Connection == connection {
			r.sessions[topic] = append(entries[:i], entries[i+1:]...)
			if len(r.sessions[topic]) == 0 {
				delete(r.sessions, topic)
			}
			return nil
		}
	}
	return nil
}

// List returns a copy of the session's entries in join order. Entries
// are appended in token order and tokens never change, so the stored
// slice is already sorted.
func (r *MemoryRegistry) List(key ref.SessionKey) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.sessions[key.String()]
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result, nil
}

// UpdateSnapshot stores the connection's own form snapshot.
func (r *MemoryRegistry) UpdateSnapshot(key ref.SessionKey, connection ref.ConnectionID, snapshot []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.sessions[key.String()]
	for i := range entries {
		if entries[i].Connection == connection {
			entries[i].Snapshot = snapshot
			return nil
		}
	}
	return ErrNotTracked
}
