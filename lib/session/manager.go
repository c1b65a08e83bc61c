// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/clock"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/ref"
	"github.com/bureau-foundation/pressroom/lib/rendercache"
	"github.com/bureau-foundation/pressroom/lib/slug"
)

// Default lock thresholds. An owner idle past WarnAfter gets a
// warning; past LockTimeout the lock is surrendered.
const (
	DefaultLockTimeout  = 30 * time.Minute
	DefaultWarnAfter    = 25 * time.Minute
	DefaultPollInterval = 60 * time.Second
)

// Config holds the Manager's dependencies and tuning.
type Config struct {
	// Registry is the shared presence backend. Required.
	Registry presence.Registry

	// Store persists documents. Required.
	Store *docstore.Store

	// Slugs validates URL slugs on save. Required.
	Slugs *slug.Validator

	// Broadcaster publishes session and document events. Required.
	Broadcaster *broadcast.Broadcaster

	// Cache is invalidated after saves. Optional.
	Cache *rendercache.Cache

	// Clock drives activity stamps and the expiry monitor. Defaults
	// to the real clock.
	Clock clock.Clock

	// Logger receives session lifecycle messages. Nil discards them.
	Logger *slog.Logger

	// LockTimeout, WarnAfter, and PollInterval tune the expiration
	// monitor. Zero selects the defaults.
	LockTimeout  time.Duration
	WarnAfter    time.Duration
	PollInterval time.Duration

	// DisableFailOpen turns registry failures into Join errors
	// instead of falling back to a private local registry. The
	// default (fail open) trades collaboration safety for
	// availability: a lone editor keeps working through a presence
	// outage, at the cost of possible concurrent owners across
	// nodes until the backend returns.
	DisableFailOpen bool
}

// Manager creates and operates sessions. One Manager serves the
// whole process; Sessions are per connection.
type Manager struct {
	registry    presence.Registry
	store       *docstore.Store
	slugs       *slug.Validator
	broadcaster *broadcast.Broadcaster
	cache       *rendercache.Cache
	clock       clock.Clock
	logger      *slog.Logger

	lockTimeout  time.Duration
	warnAfter    time.Duration
	pollInterval time.Duration
	failOpen     bool

	// fallback is the private registry used when the shared backend
	// is unreachable. Shared across this manager's sessions so
	// editors on the same node still arbitrate against each other.
	fallback *presence.MemoryRegistry
}

// NewManager validates the configuration and creates a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("session: Registry is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session: Store is required")
	}
	if cfg.Slugs == nil {
		return nil, fmt.Errorf("session: Slugs is required")
	}
	if cfg.Broadcaster == nil {
		return nil, fmt.Errorf("session: Broadcaster is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	lockTimeout := cfg.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	warnAfter := cfg.WarnAfter
	if warnAfter <= 0 {
		warnAfter = DefaultWarnAfter
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if warnAfter >= lockTimeout {
		return nil, fmt.Errorf("session: WarnAfter (%v) must be below LockTimeout (%v)", warnAfter, lockTimeout)
	}

	return &Manager{
		registry:     cfg.Registry,
		store:        cfg.Store,
		slugs:        cfg.Slugs,
		broadcaster:  cfg.Broadcaster,
		cache:        cfg.Cache,
		clock:        clk,
		logger:       logger,
		lockTimeout:  lockTimeout,
		warnAfter:    warnAfter,
		pollInterval: pollInterval,
		failOpen:     !cfg.DisableFailOpen,
		fallback:     presence.NewMemoryRegistry(),
	}, nil
}

// Join connects a tab to an edit session: track presence, derive the
// role, load the document cell, subscribe to the three topics, and
// (for the owner) start the expiry monitor. A zero version asks for
// resolution (published, else newest).
func (m *Manager) Join(ctx context.Context, key ref.SessionKey, connection ref.ConnectionID, user presence.User, language ref.Language, version ref.Version) (*Session, error) {
	registry, entries, failedOpen, err := m.track(key, connection, user)
	if err != nil {
		return nil, err
	}
	assignment := presence.Arbitrate(entries, connection)

	session := &Session{
		State: State{
			Key:        key,
			Connection: connection,
			User:       user,
			Language:   language,
			Role:       assignment.Role,
			Owner:      assignment.Owner,
			Editors:    assignment.Entries,
			FailedOpen: failedOpen,
		},
		registry: registry,
	}

	if err := m.load(ctx, session, version); err != nil {
		if untrackErr := registry.Untrack(key, connection); untrackErr != nil {
			m.logger.Error("untrack after failed join", "session", key.String(), "error", untrackErr)
		}
		return nil, err
	}

	session.sessionSub = m.broadcaster.SubscribeSession(key)
	session.documentSub = m.broadcaster.SubscribeDocument(key.Group(), key.Document())
	session.listingSub = m.broadcaster.SubscribeListing(key.Group())

	if assignment.Role == presence.Owner {
		session.Touch(m.clock.Now())
		m.broadcaster.OwnerJoined(key, connection, user)
		m.startMonitor(session)
	} else if len(assignment.Owner.Snapshot) > 0 {
		// Late joiner: the owner has unsaved work. Bootstrap the
		// form from their last snapshot instead of the stored cell.
		form, err := decodeSnapshot(assignment.Owner.Snapshot)
		if err != nil {
			m.logger.Warn("discarding undecodable owner snapshot",
				"session", key.String(), "error", err)
		} else {
			session.State.Form = form
			session.State.PendingChanges = true
		}
	}

	m.logger.Info("session joined",
		"session", key.String(),
		"connection", connection.String(),
		"role", assignment.Role.String(),
		"language", language.String(),
		"fail_open", failedOpen,
	)
	return session, nil
}

// track registers the connection, failing open to the private local
// registry when the shared backend errors and fail-open is enabled.
func (m *Manager) track(key ref.SessionKey, connection ref.ConnectionID, user presence.User) (presence.Registry, []presence.Entry, bool, error) {
	registry := m.registry
	failedOpen := false

	_, err := registry.Track(key, connection, user)
	if err == nil {
		entries, listErr := registry.List(key)
		if listErr == nil {
			return registry, entries, false, nil
		}
		err = listErr
	}

	if !m.failOpen {
		return nil, nil, false, fmt.Errorf("session: presence backend: %w", err)
	}

	m.logger.Warn("presence backend unavailable, failing open to local registry",
		"session", key.String(),
		"connection", connection.String(),
		"error", err,
	)
	registry = m.fallback
	failedOpen = true
	if _, err := registry.Track(key, connection, user); err != nil {
		return nil, nil, false, fmt.Errorf("session: fallback registry: %w", err)
	}
	entries, err := registry.List(key)
	if err != nil {
		return nil, nil, false, fmt.Errorf("session: fallback registry: %w", err)
	}
	return registry, entries, failedOpen, nil
}

// load reads the session's document cell, classifying the miss cases
// (new document, new translation) instead of failing on them.
func (m *Manager) load(ctx context.Context, session *Session, version ref.Version) error {
	state := &session.State
	group, id := state.Key.Group(), state.Key.Document()

	doc, err := m.store.Read(ctx, group, id, state.Language, version)
	switch {
	case err == nil:
		state.Document = doc
		state.Version = doc.Version
		state.Form = editOf(doc)
		state.LanguageStatuses = doc.LanguageStatuses
		return nil

	case errors.Is(err, docstore.ErrVersionNotFound):
		return fmt.Errorf("session: joining %s at version %s: %w", state.Key, version, err)

	case errors.Is(err, docstore.ErrNotFound):
		languages, listErr := m.store.ListLanguages(ctx, group, id)
		if listErr != nil {
			return fmt.Errorf("session: joining %s: %w", state.Key, listErr)
		}
		if len(languages) == 0 {
			state.IsNew = true
			state.Form = document.Edit{
				Status:        document.StatusDraft,
				DirectorySlug: directorySlugFor(id),
			}
			state.LanguageStatuses = map[string]document.Status{}
			return nil
		}
		// The document exists in other languages: a new translation.
		// Start the form from the primary cell so the translator
		// sees the source content.
		primary, readErr := m.store.Read(ctx, group, id, languages[0].Language, 0)
		if readErr != nil {
			return fmt.Errorf("session: joining %s: %w", state.Key, readErr)
		}
		if !primary.IsPrimaryLanguage() {
			if reread, rereadErr := m.store.Read(ctx, group, id, primary.PrimaryLanguage, 0); rereadErr == nil {
				primary = reread
			}
		}
		state.IsNewTranslation = true
		state.Document = primary
		state.Version = 0
		form := editOf(primary)
		form.Status = document.EffectiveStatus(document.StatusDraft, false, primary.PrimaryStatus())
		form.URLSlug = ""
		form.PublishedAt = time.Time{}
		state.Form = form
		state.LanguageStatuses = primary.LanguageStatuses
		return nil

	default:
		return fmt.Errorf("session: joining %s: %w", state.Key, err)
	}
}

// directorySlugFor seeds a new document's directory slug from its
// identifier: the identifier IS the slug in slug mode, and timestamp
// documents have no directory slug at all.
func directorySlugFor(id ref.DocumentID) string {
	if id.Mode() == ref.ModeSlug {
		return id.String()
	}
	return ""
}

func (m *Manager) startMonitor(session *Session) {
	monitor := &monitor{
		clock:       m.clock,
		registry:    session.registry,
		broadcaster: m.broadcaster,
		logger:      m.logger,
		key:         session.State.Key,
		connection:  session.State.Connection,
		user:        session.State.User,
		warnAfter:   m.warnAfter,
		expireAfter: m.lockTimeout,
		poll:        m.pollInterval,
		activity:    &session.activity,
		stop:        make(chan struct{}),
	}
	session.setMonitor(monitor)
	go monitor.run()
}

// Leave disconnects the session: monitor stopped, presence entry
// removed, subscriptions cancelled. An owner's departure is
// broadcast so the next joiner's promotion can happen.
func (m *Manager) Leave(session *Session) {
	session.stopMonitor()

	state := &session.State
	if err := session.registry.Untrack(state.Key, state.Connection); err != nil {
		m.logger.Error("untrack on leave", "session", state.Key.String(), "error", err)
	}
	if state.Role == presence.Owner {
		m.broadcaster.OwnerLeft(state.Key, state.Connection, state.User, false)
	}

	session.sessionSub.Cancel()
	session.documentSub.Cancel()
	session.listingSub.Cancel()

	m.logger.Info("session left",
		"session", state.Key.String(),
		"connection", state.Connection.String(),
	)
}

// SwitchLanguage moves the session to another language of the same
// document. Implemented as leave-and-rejoin: presence, role, and
// subscriptions are all re-derived, so switching can gain or lose
// the lock exactly like a fresh join.
func (m *Manager) SwitchLanguage(ctx context.Context, session *Session, language ref.Language) (*Session, error) {
	state := session.State
	m.Leave(session)
	return m.Join(ctx, state.Key, state.Connection, state.User, language, 0)
}

// SwitchVersion moves the session to another version of the same
// language, with the same leave-and-rejoin semantics.
func (m *Manager) SwitchVersion(ctx context.Context, session *Session, version ref.Version) (*Session, error) {
	state := session.State
	m.Leave(session)
	return m.Join(ctx, state.Key, state.Connection, state.User, state.Language, version)
}

// Update is the owner's edit path: replace the form, push the
// snapshot for late joiners, and broadcast the delta. Deltas are
// split so spectators can apply cheap meta updates without re-diffing
// the body.
func (m *Manager) Update(session *Session, form document.Edit) error {
	state := &session.State
	if state.ReadOnly {
		return ErrReadOnly
	}
	if state.Role != presence.Owner {
		return ErrNotOwner
	}

	previous := state.Form
	state.Form = form
	session.Touch(m.clock.Now())
	state.WarningDeadline = time.Time{}

	snapshot, err := encodeSnapshot(form)
	if err != nil {
		return fmt.Errorf("session: encoding snapshot: %w", err)
	}
	if err := session.registry.UpdateSnapshot(state.Key, state.Connection, snapshot); err != nil {
		if errors.Is(err, presence.ErrNotTracked) {
			return ErrSessionLost
		}
		m.logger.Warn("snapshot update failed", "session", state.Key.String(), "error", err)
	}

	if form.Body != previous.Body {
		m.broadcaster.FormChange(state.Key, state.Connection, broadcast.FormContent{
			Session: state.Key,
			Body:    form.Body,
		})
	}
	if metaChanged(previous, form) {
		// The per-language status map tracks the form, not the store,
		// so spectators see the pending status for this language.
		statuses := make(map[string]document.Status, len(state.LanguageStatuses)+1)
		for code, status := range state.LanguageStatuses {
			statuses[code] = status
		}
		statuses[state.Language.String()] = form.Status
		state.LanguageStatuses = statuses
		m.broadcaster.FormChange(state.Key, state.Connection, broadcast.FormMeta{
			Session:          state.Key,
			Title:            form.Title,
			Status:           form.Status,
			URLSlug:          form.URLSlug,
			DirectorySlug:    form.DirectorySlug,
			FeaturedImage:    form.FeaturedImage,
			PublishedAt:      form.PublishedAt,
			LanguageStatuses: statuses,
		})
	}
	return nil
}

func metaChanged(previous, current document.Edit) bool {
	previous.Body, current.Body = "", ""
	return previous != current
}
