// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/pressroom/lib/codec"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/pubsub"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// State is everything the editor UI renders for one session. It is a
// plain struct mutated only by the Manager's methods, so the host can
// diff it between events without chasing hidden fields.
type State struct {
	Key        ref.SessionKey
	Connection ref.ConnectionID
	User       presence.User

	// Language and Version select the cell under edit. Version is
	// zero while a legacy document is loaded.
	Language ref.Language
	Version  ref.Version

	Role    presence.Role
	Owner   presence.Entry
	Editors []presence.Entry

	// Document is the loaded cell, nil only for brand-new documents.
	// For a new translation it holds the primary-language cell the
	// editor starts from.
	Document *document.Document

	// Form is the live form contents: the owner's authoritative
	// copy, or a spectator's synced mirror.
	Form document.Edit

	// LanguageStatuses mirrors the document's per-language statuses.
	// Spectators update it from meta deltas without a store read.
	LanguageStatuses map[string]document.Status

	// PendingChanges is set on spectators when a form delta arrives
	// that the store has not seen yet.
	PendingChanges bool

	// IsNew marks a document with no stored content in any language.
	IsNew bool

	// IsNewTranslation marks a language with no stored content for
	// an otherwise existing document.
	IsNewTranslation bool

	// ReadOnly is the terminal state entered when every version of
	// the viewed language was deleted out from under the session.
	ReadOnly bool

	// WarningDeadline is nonzero while a lock-expiry warning is
	// active: the lock is lost at this instant unless activity
	// resumes.
	WarningDeadline time.Time

	// Notices are user-facing messages from the last save (slug
	// auto-clear and the like).
	Notices []string

	// FailedOpen marks a session tracked in the private fallback
	// registry because the shared presence backend was unreachable.
	FailedOpen bool
}

// Session is the live handle for one connected tab: the state plus
// the subscriptions and the expiry monitor. All methods that change
// state live on Manager; the host must call them from a single
// goroutine per session (one event loop per connection), with Touch as
// the one concurrency-safe exception.
type Session struct {
	State State

	registry    presence.Registry
	sessionSub  *pubsub.Subscription
	documentSub *pubsub.Subscription
	listingSub  *pubsub.Subscription

	monitorMu sync.Mutex
	monitor   *monitor

	// activity is the Unix-nanosecond timestamp of the owner's last
	// interaction, read by the expiry monitor goroutine.
	activity atomic.Int64
}

// SessionEvents returns the form-sync event channel.
func (s *Session) SessionEvents() <-chan any { return s.sessionSub.C }

// DocumentEvents returns the document lifecycle event channel.
func (s *Session) DocumentEvents() <-chan any { return s.documentSub.C }

// ListingEvents returns the group dashboard event channel.
func (s *Session) ListingEvents() <-chan any { return s.listingSub.C }

// Touch records owner activity for the expiration monitor. Safe to
// call from any goroutine. Update and Save touch implicitly; hosts
// call Touch directly for interactions that change nothing (cursor
// movement, focus).
func (s *Session) Touch(now time.Time) {
	s.activity.Store(now.UnixNano())
}

func (s *Session) setMonitor(m *monitor) {
	s.monitorMu.Lock()
	s.monitor = m
	s.monitorMu.Unlock()
}

func (s *Session) stopMonitor() {
	s.monitorMu.Lock()
	m := s.monitor
	s.monitor = nil
	s.monitorMu.Unlock()
	if m != nil {
		m.halt()
	}
}

// formSnapshot is the owner's form state as stored in the presence
// entry, used to bootstrap late-joining spectators. CBOR via the
// shared codec.
type formSnapshot struct {
	Title         string `cbor:"title"`
	Status        string `cbor:"status"`
	URLSlug       string `cbor:"url_slug,omitempty"`
	DirectorySlug string `cbor:"directory_slug,omitempty"`
	FeaturedImage string `cbor:"featured_image,omitempty"`
	Body          string `cbor:"body"`
	PublishedAt   int64  `cbor:"published_at,omitempty"`
}

func encodeSnapshot(form document.Edit) ([]byte, error) {
	snapshot := formSnapshot{
		Title:         form.Title,
		Status:        form.Status.String(),
		URLSlug:       form.URLSlug,
		DirectorySlug: form.DirectorySlug,
		FeaturedImage: form.FeaturedImage,
		Body:          form.Body,
	}
	if !form.PublishedAt.IsZero() {
		snapshot.PublishedAt = form.PublishedAt.UnixNano()
	}
	return codec.Marshal(snapshot)
}

func decodeSnapshot(data []byte) (document.Edit, error) {
	var snapshot formSnapshot
	if err := codec.Unmarshal(data, &snapshot); err != nil {
		return document.Edit{}, err
	}
	status, err := document.ParseStatus(snapshot.Status)
	if err != nil {
		return document.Edit{}, err
	}
	form := document.Edit{
		Title:         snapshot.Title,
		Status:        status,
		URLSlug:       snapshot.URLSlug,
		DirectorySlug: snapshot.DirectorySlug,
		FeaturedImage: snapshot.FeaturedImage,
		Body:          snapshot.Body,
	}
	if snapshot.PublishedAt != 0 {
		form.PublishedAt = time.Unix(0, snapshot.PublishedAt)
	}
	return form, nil
}

// editOf lifts a stored document into form fields.
func editOf(doc *document.Document) document.Edit {
	return document.Edit{
		Title:         doc.Title,
		Status:        doc.Status,
		URLSlug:       doc.URLSlug,
		DirectorySlug: doc.DirectorySlug,
		FeaturedImage: doc.FeaturedImage,
		Body:          doc.Body,
		PublishedAt:   doc.PublishedAt,
	}
}
