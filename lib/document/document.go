// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"time"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// Document is one (group, document, language, version) content unit
// plus the cross-language and cross-version status maps a viewer
// needs to render the editor chrome. The body is opaque text — the
// markdown pipeline lives elsewhere.
type Document struct {
	Group    ref.Group
	ID       ref.DocumentID
	Language ref.Language

	// Version is the version this value holds the content of. Zero
	// for legacy flat documents that predate versioning.
	Version ref.Version

	Title         string
	Status        Status
	PublishedAt   time.Time
	URLSlug       string // optional custom URL slug; empty means none
	DirectorySlug string // path-style slug; doubles as the document ID in slug mode
	FeaturedImage string

	Body string

	// PrimaryLanguage is the language the document was originally
	// authored in. Translation status inheritance flows from it.
	PrimaryLanguage ref.Language

	// AvailableLanguages lists every language with stored content.
	AvailableLanguages []ref.Language

	// LanguageStatuses maps language code to that language's publish
	// status (of its published-or-latest version).
	LanguageStatuses map[string]Status

	// AvailableVersions lists this language's stored versions,
	// ascending. Empty for legacy documents.
	AvailableVersions []ref.Version

	// VersionStatuses maps each available version to its status.
	VersionStatuses map[ref.Version]Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLegacy reports whether the document predates versioning: no
// version number and no version list. Legacy documents are always
// updated in place; they never fork.
func (d *Document) IsLegacy() bool {
	return d.Version.IsZero() && len(d.AvailableVersions) == 0
}

// IsPrimaryLanguage reports whether this value holds the primary
// language variant.
func (d *Document) IsPrimaryLanguage() bool {
	return d.Language == d.PrimaryLanguage
}

// PrimaryStatus returns the primary language's publish status, or
// StatusDraft when unknown (a half-created document).
func (d *Document) PrimaryStatus() Status {
	if status, ok := d.LanguageStatuses[d.PrimaryLanguage.String()]; ok {
		return status
	}
	return StatusDraft
}

// HasLanguage reports whether content exists for the given language.
func (d *Document) HasLanguage(language ref.Language) bool {
	for _, available := range d.AvailableLanguages {
		if available == language {
			return true
		}
	}
	return false
}

// Edit is the set of editable fields snapshotted from the form on
// save. It is what the state machine compares against the on-disk
// document.
type Edit struct {
	Title         string
	Status        Status
	URLSlug       string
	DirectorySlug string
	FeaturedImage string
	Body          string
	PublishedAt   time.Time
}
