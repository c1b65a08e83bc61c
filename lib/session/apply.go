// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/presence"
)

// Apply folds one broadcast event into the session's state. The
// caller's event loop owns the State and calls Apply from a single
// goroutine, so no locking happens here. Unknown event kinds are
// ignored.
func (m *Manager) Apply(ctx context.Context, session *Session, event broadcast.Event) error {
	state := &session.State

	switch ev := event.(type) {
	case broadcast.FormContent:
		// The owner's form is authoritative and never overwritten
		// by its own echoes.
		if state.Role == presence.Owner {
			return nil
		}
		state.Form.Body = ev.Body
		state.PendingChanges = true

	case broadcast.FormMeta:
		if state.Role == presence.Owner {
			return nil
		}
		state.Form.Title = ev.Title
		state.Form.Status = ev.Status
		state.Form.URLSlug = ev.URLSlug
		state.Form.DirectorySlug = ev.DirectorySlug
		state.Form.FeaturedImage = ev.FeaturedImage
		state.Form.PublishedAt = ev.PublishedAt
		if ev.LanguageStatuses != nil {
			state.LanguageStatuses = ev.LanguageStatuses
		}
		state.PendingChanges = true

	case broadcast.EditorJoined:
		m.refreshEditors(session)

	case broadcast.EditorLeft:
		if ev.Connection == state.Connection {
			// Our own departure: the expiry monitor surrendered the
			// lock. Demote in place; the tab stays connected as a
			// spectator.
			state.Role = presence.Spectator
			state.WarningDeadline = time.Time{}
			if ev.Expired {
				state.Notices = append(state.Notices,
					"Your editing lock expired after inactivity. You are now viewing read-only.")
			}
			session.stopMonitor()
			m.refreshEditors(session)
			return nil
		}
		m.refreshEditors(session)
		if state.Role == presence.Spectator && state.Owner.Connection == state.Connection {
			// Re-arbitration put us first: promote.
			state.Role = presence.Owner
			session.Touch(m.clock.Now())
			m.broadcaster.OwnerJoined(state.Key, state.Connection, state.User)
			m.startMonitor(session)
			m.logger.Info("session promoted to owner",
				"session", state.Key.String(),
				"connection", state.Connection.String(),
			)
		}

	case broadcast.EditorSaved:
		if state.Role == presence.Owner {
			return nil
		}
		if ev.Language == state.Language && ev.Version != 0 {
			state.Version = ev.Version
		}
		if err := m.reload(ctx, session, true); err != nil {
			return err
		}
		state.PendingChanges = false

	case broadcast.LockWarning:
		if state.Role == presence.Owner {
			state.WarningDeadline = ev.Deadline
		}

	case broadcast.VersionCreated, broadcast.VersionPublished, broadcast.TranslationCreated:
		// Another cell changed shape. Refresh the derived maps but
		// keep whatever is in the form.
		if err := m.reload(ctx, session, false); err != nil {
			return err
		}

	case broadcast.VersionDeleted:
		if ev.Language != state.Language || ev.Version != state.Version {
			if err := m.reload(ctx, session, false); err != nil {
				return err
			}
			return nil
		}
		// The version under this session was deleted. Fall back to
		// the newest survivor, or freeze the session when none
		// remain.
		if len(ev.Remaining) == 0 {
			state.ReadOnly = true
			state.Notices = append(state.Notices, "This version was deleted and no versions remain.")
			return nil
		}
		state.Version = ev.Remaining[len(ev.Remaining)-1]
		if err := m.reload(ctx, session, true); err != nil {
			return err
		}
		state.Notices = append(state.Notices, "The version you were viewing was deleted.")
	}
	return nil
}

// refreshEditors re-reads presence and re-arbitrates. Registry
// errors leave the previous roster in place.
func (m *Manager) refreshEditors(session *Session) {
	state := &session.State
	entries, err := session.registry.List(state.Key)
	if err != nil {
		m.logger.Warn("presence list failed", "session", state.Key.String(), "error", err)
		return
	}
	assignment := presence.Arbitrate(entries, state.Connection)
	state.Owner = assignment.Owner
	state.Editors = assignment.Entries
}

// reload re-reads the session's cell. With replaceForm the form is
// reset to the stored content; otherwise only Document and the
// derived maps are refreshed.
func (m *Manager) reload(ctx context.Context, session *Session, replaceForm bool) error {
	state := &session.State
	doc, err := m.store.Read(ctx, state.Key.Group(), state.Key.Document(), state.Language, state.Version)
	if err != nil {
		return fmt.Errorf("session: reloading %s: %w", state.Key, err)
	}
	state.Document = doc
	state.Version = doc.Version
	state.LanguageStatuses = doc.LanguageStatuses
	if replaceForm {
		state.Form = editOf(doc)
	}
	return nil
}
