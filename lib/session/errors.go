// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"

	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/slug"
)

var (
	// ErrNotOwner: the operation needs the editing lock.
	ErrNotOwner = errors.New("session: not the lock owner")

	// ErrReadOnly: the session entered the terminal read-only state
	// (every version of its language was deleted).
	ErrReadOnly = errors.New("session: read-only")

	// ErrSessionLost: the connection's presence entry vanished (a
	// race with expiry or backend restart). The host should re-join.
	ErrSessionLost = errors.New("session: presence entry lost, re-join required")

	// ErrTitleRequired: a save was attempted with an empty title.
	ErrTitleRequired = errors.New("session: title is required")
)

// UserMessage maps an error from Save (or Update) to the message the
// editor shows. Unrecognized errors get a generic line; the real
// error still goes to the log.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, slug.ErrInvalidFormat):
		return "URL slugs may only contain lowercase letters, numbers, and single hyphens."
	case errors.Is(err, slug.ErrReservedLanguageCode):
		return "This URL slug is reserved for language routing."
	case errors.Is(err, slug.ErrReservedRouteWord):
		return "This URL slug is a reserved word."
	case errors.Is(err, docstore.ErrExists):
		return "Someone else saved this content first. Reload to pick up their changes."
	case errors.Is(err, docstore.ErrVersionNotFound):
		return "This version no longer exists."
	case errors.Is(err, ErrTitleRequired):
		return "A title is required before saving."
	case errors.Is(err, ErrNotOwner):
		return "You are viewing in read-only mode while someone else edits."
	case errors.Is(err, ErrReadOnly):
		return "This document is no longer editable."
	case errors.Is(err, ErrSessionLost):
		return "Your editing session expired. Reload to continue."
	default:
		return "Your changes could not be saved. Try again."
	}
}
