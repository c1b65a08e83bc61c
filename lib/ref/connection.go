// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"

	"github.com/google/uuid"
)

// ConnectionID identifies one live viewer connection — one browser
// tab, roughly. A user with three tabs open on the same document holds
// three distinct connection IDs, and the lock arbiter treats each tab
// independently (only one tab can be the owner).
//
// ConnectionID is an immutable value type. The zero value is not
// valid; use IsZero to check.
type ConnectionID struct {
	id string
}

// NewConnectionID generates a fresh random connection ID. Called once
// when a viewer connects; the ID lives for the duration of the
// connection.
func NewConnectionID() ConnectionID {
	return ConnectionID{id: uuid.NewString()}
}

// ParseConnectionID validates and wraps a raw connection ID string.
func ParseConnectionID(raw string) (ConnectionID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return ConnectionID{}, fmt.Errorf("connection ID %q: %w", raw, err)
	}
	return ConnectionID{id: parsed.String()}, nil
}

// String returns the canonical UUID string form.
func (c ConnectionID) String() string { return c.id }

// IsZero reports whether the ConnectionID is the zero value.
func (c ConnectionID) IsZero() bool { return c.id == "" }
