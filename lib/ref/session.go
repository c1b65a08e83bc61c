// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// SessionKey identifies one collaborative editing topic: all viewers
// of the same (group, document) edit the same logical document and
// therefore share one lock, regardless of which language or version
// each is looking at. The addressing mode is part of the key because
// slug-mode and timestamp-mode documents occupy disjoint namespaces.
//
// SessionKey is an immutable value type. The zero value is not valid;
// use IsZero to check.
type SessionKey struct {
	group    Group
	document DocumentID
}

// NewSessionKey builds a session key from a validated group and
// document identifier.
func NewSessionKey(group Group, document DocumentID) (SessionKey, error) {
	if group.IsZero() {
		return SessionKey{}, fmt.Errorf("session key requires a group")
	}
	if document.IsZero() {
		return SessionKey{}, fmt.Errorf("session key requires a document identifier")
	}
	return SessionKey{group: group, document: document}, nil
}

// ParseSessionKey parses the string form produced by String:
// "edit:<group>/<mode>/<document>".
func ParseSessionKey(raw string) (SessionKey, error) {
	rest, ok := strings.CutPrefix(raw, "edit:")
	if !ok {
		return SessionKey{}, fmt.Errorf("session key %q missing edit: prefix", raw)
	}
	groupPart, rest, ok := strings.Cut(rest, "/")
	if !ok {
		return SessionKey{}, fmt.Errorf("session key %q missing mode segment", raw)
	}
	modePart, documentPart, ok := strings.Cut(rest, "/")
	if !ok {
		return SessionKey{}, fmt.Errorf("session key %q missing document segment", raw)
	}

	group, err := ParseGroup(groupPart)
	if err != nil {
		return SessionKey{}, fmt.Errorf("session key %q: %w", raw, err)
	}
	document, err := ParseDocumentID(documentPart)
	if err != nil {
		return SessionKey{}, fmt.Errorf("session key %q: %w", raw, err)
	}
	if string(document.Mode()) != modePart {
		return SessionKey{}, fmt.Errorf("session key %q: mode %q does not match document shape %q",
			raw, modePart, document.Mode())
	}
	return SessionKey{group: group, document: document}, nil
}

// Group returns the content group of the session.
func (k SessionKey) Group() Group { return k.group }

// Document returns the document identifier of the session.
func (k SessionKey) Document() DocumentID { return k.document }

// Mode returns the addressing mode of the session's document.
func (k SessionKey) Mode() Mode { return k.document.Mode() }

// String renders the key as a pub/sub topic:
// "edit:<group>/<mode>/<document>".
func (k SessionKey) String() string {
	return "edit:" + k.group.String() + "/" + string(k.document.Mode()) + "/" + k.document.String()
}

// IsZero reports whether the SessionKey is the zero value.
func (k SessionKey) IsZero() bool { return k.group.IsZero() }
