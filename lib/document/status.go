// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import "fmt"

// Status is a document's publish state for one language (and, under
// versioning, one version).
type Status string

const (
	// StatusDraft is unpublished work in progress. New documents,
	// new translations, and forked versions all start here.
	StatusDraft Status = "draft"

	// StatusScheduled is publish-at-a-future-time. Treated as
	// unpublished by the state machine until the host flips it.
	StatusScheduled Status = "scheduled"

	// StatusPublished is live.
	StatusPublished Status = "published"

	// StatusUnlisted is reachable by direct URL but excluded from
	// listings and feeds.
	StatusUnlisted Status = "unlisted"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDraft, StatusScheduled, StatusPublished, StatusUnlisted:
		return Status(raw), nil
	}
	return "", fmt.Errorf("document: unknown status %q", raw)
}

// String returns the status as stored.
func (s Status) String() string { return string(s) }
