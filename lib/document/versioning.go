// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// ContentDigest returns the BLAKE3 digest of a document body. Digests
// are compared, never stored, so the algorithm can change freely.
func ContentDigest(body string) [32]byte {
	return blake3.Sum256([]byte(body))
}

// ContentChanged reports whether the edit's body differs from the
// on-disk document's body. Metadata-only edits (title, slug, status)
// are not content changes — they update the current version in place.
func ContentChanged(onDisk *Document, edit Edit) bool {
	if len(onDisk.Body) != len(edit.Body) {
		return true
	}
	return ContentDigest(onDisk.Body) != ContentDigest(edit.Body)
}

// ShouldForkVersion decides whether saving this edit must fork a new
// version (copy-on-write) instead of mutating the version under edit.
// A fork happens when the document participates in versioning AND a
// version is actually loaded AND the edit is significant:
//
//   - the body changed, or
//   - the loaded version is published and the edit moves it away from
//     published (a live version is never mutated into an unpublished
//     state; the retreat happens on a fresh draft fork instead).
//
// Legacy flat documents never fork.
func ShouldForkVersion(onDisk *Document, edit Edit) bool {
	if onDisk.IsLegacy() {
		return false
	}
	if onDisk.Version.IsZero() {
		return false
	}
	if ContentChanged(onDisk, edit) {
		return true
	}
	loadedStatus, ok := onDisk.VersionStatuses[onDisk.Version]
	if ok && loadedStatus == StatusPublished && edit.Status != StatusPublished {
		return true
	}
	return false
}

// Fork returns the document a version fork creates: a copy of the
// version under edit carrying the edit's fields, numbered
// max(available)+1, with status forced to draft. Published status is
// only ever reached through an explicit publish of the fork.
func Fork(onDisk *Document, edit Edit) *Document {
	forked := *onDisk
	forked.Version = ref.NextVersion(onDisk.AvailableVersions)
	forked.Title = edit.Title
	forked.Status = StatusDraft
	forked.URLSlug = edit.URLSlug
	forked.DirectorySlug = edit.DirectorySlug
	forked.FeaturedImage = edit.FeaturedImage
	forked.Body = edit.Body
	forked.PublishedAt = edit.PublishedAt

	forked.AvailableVersions = append(append([]ref.Version(nil),
		onDisk.AvailableVersions...), forked.Version)
	forked.VersionStatuses = make(map[ref.Version]Status, len(onDisk.VersionStatuses)+1)
	for version, status := range onDisk.VersionStatuses {
		forked.VersionStatuses[version] = status
	}
	forked.VersionStatuses[forked.Version] = StatusDraft
	return &forked
}

// EffectiveStatus resolves the status a save actually persists.
// The primary language saves what was requested. A translation can
// only reach published if the primary language is published; until
// then its effective status mirrors the primary's. This is enforced
// at save time, not stored — republishing the primary does not need
// to rewrite translations.
func EffectiveStatus(requested Status, isPrimary bool, primaryStatus Status) Status {
	if isPrimary {
		return requested
	}
	if primaryStatus != StatusPublished {
		return primaryStatus
	}
	return requested
}

// TranslationExists reports whether a concurrent writer (typically a
// background translation job) has already created content for the
// target language: the re-read document must actually be in the
// target language and have a non-empty body. Used to turn a
// create-translation into an update instead of a duplicate create.
func TranslationExists(reread *Document, target ref.Language) bool {
	if reread == nil {
		return false
	}
	return reread.Language == target && reread.Body != ""
}
