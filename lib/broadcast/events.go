// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package broadcast

import (
	"time"

	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// Kind discriminates event types on the wire.
type Kind string

const (
	KindFormMeta           Kind = "form_meta"
	KindFormContent        Kind = "form_content"
	KindEditorJoined       Kind = "editor_joined"
	KindEditorLeft         Kind = "editor_left"
	KindEditorSaved        Kind = "editor_saved"
	KindLockWarning        Kind = "lock_warning"
	KindVersionCreated     Kind = "version_created"
	KindVersionDeleted     Kind = "version_deleted"
	KindVersionPublished   Kind = "version_published"
	KindTranslationCreated Kind = "translation_created"
)

// Event is implemented by every broadcast payload.
type Event interface {
	Kind() Kind
}

// FormMeta is the owner's non-body form state. Spectators replace
// their rendered meta fields wholesale with each delta; the language
// status map rides along so status banners update without a store
// read.
type FormMeta struct {
	Session          ref.SessionKey
	Title            string
	Status           document.Status
	URLSlug          string
	DirectorySlug    string
	FeaturedImage    string
	PublishedAt      time.Time
	LanguageStatuses map[string]document.Status
}

func (FormMeta) Kind() Kind { return KindFormMeta }

// FormContent is the owner's body text. Sent whole, not as a diff —
// deltas may drop, and a dropped diff would corrupt every spectator.
type FormContent struct {
	Session ref.SessionKey
	Body    string
}

func (FormContent) Kind() Kind { return KindFormContent }

// EditorJoined announces a new lock owner. Fired only for owner
// transitions; spectators come and go silently.
type EditorJoined struct {
	Session    ref.SessionKey
	Connection ref.ConnectionID
	User       presence.User
}

func (EditorJoined) Kind() Kind { return KindEditorJoined }

// EditorLeft announces that the lock owner is gone. Expired marks a
// forced removal by the expiration monitor rather than a voluntary
// leave.
type EditorLeft struct {
	Session    ref.SessionKey
	Connection ref.ConnectionID
	User       presence.User
	Expired    bool
}

func (EditorLeft) Kind() Kind { return KindEditorLeft }

// EditorSaved tells spectators the owner persisted; they reload the
// saved cell from the store.
type EditorSaved struct {
	Session  ref.SessionKey
	Language ref.Language
	Version  ref.Version
}

func (EditorSaved) Kind() Kind { return KindEditorSaved }

// LockWarning is the monitor's advance notice to an idle owner: the
// lock expires at Deadline unless activity resumes.
type LockWarning struct {
	Session  ref.SessionKey
	Deadline time.Time
}

func (LockWarning) Kind() Kind { return KindLockWarning }

// VersionCreated announces a fork.
type VersionCreated struct {
	Group    ref.Group
	ID       ref.DocumentID
	Language ref.Language
	Version  ref.Version
}

func (VersionCreated) Kind() Kind { return KindVersionCreated }

// VersionDeleted announces a version removal. Sessions viewing the
// deleted version switch to a survivor or go read-only.
type VersionDeleted struct {
	Group    ref.Group
	ID       ref.DocumentID
	Language ref.Language
	Version  ref.Version

	// Remaining lists the language's surviving versions, ascending,
	// so receivers pick their fallback without a store round trip.
	Remaining []ref.Version
}

func (VersionDeleted) Kind() Kind { return KindVersionDeleted }

// VersionPublished announces a publish (and the implied demotion of
// the previously published version).
type VersionPublished struct {
	Group    ref.Group
	ID       ref.DocumentID
	Language ref.Language
	Version  ref.Version
}

func (VersionPublished) Kind() Kind { return KindVersionPublished }

// TranslationCreated announces new language content, whether from
// the background translator or a manual save.
type TranslationCreated struct {
	Group    ref.Group
	ID       ref.DocumentID
	Language ref.Language
}

func (TranslationCreated) Kind() Kind { return KindTranslationCreated }

// SessionTopic returns the form-sync topic for a session.
func SessionTopic(key ref.SessionKey) string {
	return "session:" + key.String()
}

// DocumentTopic returns the lifecycle topic for a document.
func DocumentTopic(group ref.Group, id ref.DocumentID) string {
	return "document:" + group.String() + "/" + id.String()
}

// ListingTopic returns the dashboard topic for a group.
func ListingTopic(group ref.Group) string {
	return "listing:" + group.String()
}
