// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/pressroom/lib/broadcast"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/presence"
	"github.com/bureau-foundation/pressroom/lib/ref"
	"github.com/bureau-foundation/pressroom/lib/slug"
)

// SaveResult reports what a save did.
type SaveResult struct {
	// Version is the version the content landed in. Zero for legacy
	// documents.
	Version ref.Version

	// Forked is set when the save created a new version instead of
	// updating the one under edit.
	Forked bool

	// Published is set when this save moved a version to published.
	Published bool

	// Notices are user-facing messages, such as a slug collision
	// that was auto-cleared.
	Notices []string
}

// Save persists the owner's form. Concurrency is last-save-wins on a
// cell; creates are insert-only so racing creators get a clean
// conflict instead of an overwrite. After persisting, the session
// state is refreshed from the store.
func (m *Manager) Save(ctx context.Context, session *Session) (*SaveResult, error) {
	state := &session.State
	if state.ReadOnly {
		return nil, ErrReadOnly
	}
	if state.Role != presence.Owner {
		return nil, ErrNotOwner
	}

	edit := state.Form
	if strings.TrimSpace(edit.Title) == "" {
		return nil, ErrTitleRequired
	}
	group, id := state.Key.Group(), state.Key.Document()
	result := &SaveResult{}

	if err := m.checkSlug(ctx, state, &edit, result); err != nil {
		return nil, err
	}

	var err error
	switch {
	case state.IsNew:
		err = m.saveNew(ctx, state, edit, result)
	case state.IsNewTranslation:
		err = m.saveNewTranslation(ctx, state, edit, result)
	default:
		err = m.saveExisting(ctx, state, edit, result)
	}
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if result.Forked || result.Published {
			m.cache.InvalidateDocument(group, id)
		} else {
			m.cache.Invalidate(group, id, state.Language)
		}
	}

	m.broadcaster.Saved(state.Key, state.Language, result.Version)

	// Re-read so the session reflects what actually landed,
	// including demotions done by a concurrent publish.
	if err := m.reload(ctx, session, true); err != nil {
		return nil, err
	}
	state.IsNew = false
	state.IsNewTranslation = false
	state.PendingChanges = false
	state.Notices = result.Notices
	session.Touch(m.clock.Now())

	if snapshot, encErr := encodeSnapshot(state.Form); encErr == nil {
		if updErr := session.registry.UpdateSnapshot(state.Key, state.Connection, snapshot); updErr != nil && !errors.Is(updErr, presence.ErrNotTracked) {
			m.logger.Warn("snapshot update after save", "session", state.Key.String(), "error", updErr)
		}
	}

	m.logger.Info("session saved",
		"session", state.Key.String(),
		"language", state.Language.String(),
		"version", result.Version.String(),
		"forked", result.Forked,
		"published", result.Published,
	)
	return result, nil
}

// checkSlug validates the URL slug for slug-mode documents. Soft
// collisions clear the slug and leave a notice; format and reserved
// word violations abort the save.
func (m *Manager) checkSlug(ctx context.Context, state *State, edit *document.Edit, result *SaveResult) error {
	if state.Key.Mode() != ref.ModeSlug || edit.URLSlug == "" {
		return nil
	}
	err := m.slugs.ValidateURLSlug(ctx, state.Key.Group(), edit.URLSlug, state.Key.Document())
	if err == nil {
		return nil
	}
	if slug.IsCollision(err) {
		// Other translation cells of this document may already carry
		// the same slug from earlier saves. Clear them all so no cell
		// keeps claiming the conflicting URL.
		if clearErr := m.store.ClearURLSlug(ctx, state.Key.Group(), state.Key.Document(), edit.URLSlug); clearErr != nil {
			return fmt.Errorf("session: clearing slug: %w", clearErr)
		}
		result.Notices = append(result.Notices,
			fmt.Sprintf("The URL slug %q is already in use and was cleared.", edit.URLSlug))
		edit.URLSlug = ""
		return nil
	}
	return fmt.Errorf("session: validating slug: %w", err)
}

// saveNew creates the first cell of a brand-new document: primary
// language, version 1.
func (m *Manager) saveNew(ctx context.Context, state *State, edit document.Edit, result *SaveResult) error {
	now := m.clock.Now()
	doc := &document.Document{
		Group:              state.Key.Group(),
		ID:                 state.Key.Document(),
		Language:           state.Language,
		Version:            ref.Version(1),
		Title:              edit.Title,
		Status:             edit.Status,
		PublishedAt:        edit.PublishedAt,
		URLSlug:            edit.URLSlug,
		DirectorySlug:      edit.DirectorySlug,
		FeaturedImage:      edit.FeaturedImage,
		Body:               edit.Body,
		PrimaryLanguage:    state.Language,
		AvailableLanguages: []ref.Language{state.Language},
		AvailableVersions:  []ref.Version{1},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := m.store.Create(ctx, doc)
	if errors.Is(err, docstore.ErrExists) {
		// Another tab created the document between join and save.
		// Last save wins: write over the fresh cell.
		existing, readErr := m.store.Read(ctx, doc.Group, doc.ID, doc.Language, 0)
		if readErr != nil {
			return fmt.Errorf("session: resolving create conflict: %w", readErr)
		}
		state.Document = existing
		state.IsNew = false
		return m.saveExisting(ctx, state, edit, result)
	}
	if err != nil {
		return fmt.Errorf("session: creating document: %w", err)
	}

	result.Version = doc.Version
	if doc.Status == document.StatusPublished {
		if err := m.publish(ctx, doc.Group, doc.ID, doc.Language, doc.Version, result); err != nil {
			return err
		}
	}
	return nil
}

// saveNewTranslation creates the first cell of a new language. A
// background translation job may have landed first; re-checking and
// downgrading to an update keeps the manual content.
func (m *Manager) saveNewTranslation(ctx context.Context, state *State, edit document.Edit, result *SaveResult) error {
	group, id := state.Key.Group(), state.Key.Document()
	primary := state.Document

	reread, err := m.store.Read(ctx, group, id, state.Language, 0)
	if err == nil && document.TranslationExists(reread, state.Language) {
		state.Document = reread
		state.IsNewTranslation = false
		return m.saveExisting(ctx, state, edit, result)
	}
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("session: checking translation: %w", err)
	}

	now := m.clock.Now()
	status := document.EffectiveStatus(edit.Status, false, primary.PrimaryStatus())
	doc := &document.Document{
		Group:           group,
		ID:              id,
		Language:        state.Language,
		Title:           edit.Title,
		Status:          status,
		PublishedAt:     edit.PublishedAt,
		URLSlug:         edit.URLSlug,
		DirectorySlug:   edit.DirectorySlug,
		FeaturedImage:   edit.FeaturedImage,
		Body:            edit.Body,
		PrimaryLanguage: primary.PrimaryLanguage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !primary.Version.IsZero() {
		doc.Version = ref.Version(1)
		doc.AvailableVersions = []ref.Version{1}
	}

	err = m.store.Create(ctx, doc)
	if errors.Is(err, docstore.ErrExists) {
		// The translator won the race after our re-check. The
		// manual save still wins the content.
		state.IsNewTranslation = false
		landed, readErr := m.store.Read(ctx, group, id, state.Language, 0)
		if readErr != nil {
			return fmt.Errorf("session: resolving translation conflict: %w", readErr)
		}
		state.Document = landed
		return m.saveExisting(ctx, state, edit, result)
	}
	if err != nil {
		return fmt.Errorf("session: creating translation: %w", err)
	}

	result.Version = doc.Version
	m.broadcaster.DocumentEvent(group, id, broadcast.TranslationCreated{
		Group:    group,
		ID:       id,
		Language: state.Language,
	})
	if status == document.StatusPublished {
		if err := m.publish(ctx, group, id, state.Language, doc.Version, result); err != nil {
			return err
		}
	}
	return nil
}

// saveExisting updates a loaded cell, forking a new version when the
// edit calls for it.
func (m *Manager) saveExisting(ctx context.Context, state *State, edit document.Edit, result *SaveResult) error {
	onDisk := state.Document
	group, id := state.Key.Group(), state.Key.Document()
	now := m.clock.Now()

	requested := document.EffectiveStatus(edit.Status, onDisk.IsPrimaryLanguage(), onDisk.PrimaryStatus())
	edit.Status = requested

	if document.ShouldForkVersion(onDisk, edit) {
		forked := document.Fork(onDisk, edit)
		forked.UpdatedAt = now
		if err := m.store.CreateVersionFrom(ctx, onDisk.Version, forked); err != nil {
			return fmt.Errorf("session: forking version: %w", err)
		}
		result.Version = forked.Version
		result.Forked = true
		state.Version = forked.Version
		m.broadcaster.DocumentEvent(group, id, broadcast.VersionCreated{
			Group:    group,
			ID:       id,
			Language: state.Language,
			Version:  forked.Version,
		})
		// A fork lands as a draft. When the editor asked for
		// published, the fork is published in a second step so the
		// sibling demotion runs in its own transaction.
		if requested == document.StatusPublished {
			return m.publish(ctx, group, id, state.Language, forked.Version, result)
		}
		return nil
	}

	updated := *onDisk
	updated.Title = edit.Title
	updated.Status = requested
	updated.URLSlug = edit.URLSlug
	updated.DirectorySlug = edit.DirectorySlug
	updated.FeaturedImage = edit.FeaturedImage
	updated.Body = edit.Body
	updated.PublishedAt = edit.PublishedAt
	updated.UpdatedAt = now

	wasPublished := onDisk.Status == document.StatusPublished
	becomesPublished := requested == document.StatusPublished && !wasPublished
	if becomesPublished {
		// The demoting publish path owns the status column.
		updated.Status = onDisk.Status
	}

	if err := m.store.Write(ctx, &updated); err != nil {
		return fmt.Errorf("session: writing document: %w", err)
	}
	result.Version = updated.Version

	if becomesPublished {
		return m.publish(ctx, group, id, state.Language, updated.Version, result)
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version, result *SaveResult) error {
	publishedAt := m.clock.Now()
	if err := m.store.PublishVersion(ctx, group, id, language, version, publishedAt); err != nil {
		return fmt.Errorf("session: publishing: %w", err)
	}
	result.Published = true
	m.broadcaster.DocumentEvent(group, id, broadcast.VersionPublished{
		Group:    group,
		ID:       id,
		Language: language,
		Version:  version,
	})
	return nil
}
