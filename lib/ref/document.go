// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// Mode distinguishes the two document addressing schemes. Slug-mode
// documents are addressed by a human-chosen slug; timestamp-mode
// documents are addressed by their creation instant rendered as a
// path (used for slugless quick posts). The mode is part of the
// edit-session key because the two schemes occupy separate URL
// namespaces and never collide.
type Mode string

const (
	// ModeSlug addresses a document by its directory slug.
	ModeSlug Mode = "slug"

	// ModeTimestamp addresses a document by a YYYY/MM/DD/HHMMSS
	// creation-path token.
	ModeTimestamp Mode = "timestamp"
)

// DocumentID identifies one logical document within a group. It is
// either a slug token ("release-notes") or a timestamp-path token
// ("2026/08/30/142501"). All language variants and versions of a
// document share the same DocumentID.
//
// DocumentID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type DocumentID struct {
	id   string
	mode Mode
}

// ParseDocumentID validates and wraps a raw document identifier.
// Timestamp-path tokens are recognized by shape (four slash-separated
// numeric segments); everything else must satisfy the slug grammar.
func ParseDocumentID(raw string) (DocumentID, error) {
	if raw == "" {
		return DocumentID{}, fmt.Errorf("empty document identifier")
	}
	if strings.Contains(raw, "/") {
		if err := validateTimestampPath(raw); err != nil {
			return DocumentID{}, fmt.Errorf("document identifier %q: %w", raw, err)
		}
		return DocumentID{id: raw, mode: ModeTimestamp}, nil
	}
	if err := validateSlugToken(raw, maxSlugLength); err != nil {
		return DocumentID{}, fmt.Errorf("document identifier %q: %w", raw, err)
	}
	return DocumentID{id: raw, mode: ModeSlug}, nil
}

// String returns the raw identifier token.
func (d DocumentID) String() string { return d.id }

// Mode returns the addressing scheme of this identifier.
func (d DocumentID) Mode() Mode { return d.mode }

// IsZero reports whether the DocumentID is the zero value.
func (d DocumentID) IsZero() bool { return d.id == "" }

// validateTimestampPath checks the YYYY/MM/DD/HHMMSS shape. Segment
// lengths are fixed: 4/2/2/6 digits. Calendar validity is not checked
// here — the token is opaque and produced by the system, not typed by
// users.
func validateTimestampPath(raw string) error {
	segments := strings.Split(raw, "/")
	if len(segments) != 4 {
		return fmt.Errorf("timestamp path needs 4 segments, got %d", len(segments))
	}
	lengths := [4]int{4, 2, 2, 6}
	for i, segment := range segments {
		if len(segment) != lengths[i] {
			return fmt.Errorf("timestamp segment %d must be %d digits", i+1, lengths[i])
		}
		for j := 0; j < len(segment); j++ {
			if segment[j] < '0' || segment[j] > '9' {
				return fmt.Errorf("timestamp segment %d contains non-digit %q", i+1, segment[j])
			}
		}
	}
	return nil
}
