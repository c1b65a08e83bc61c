// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

// PublishVersion marks one version published and demotes any other
// published version of the same language to draft, all in one
// IMMEDIATE transaction. publishedAt becomes the version's publish
// timestamp; the zero time means "now".
func (s *Store) PublishVersion(ctx context.Context, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version, publishedAt time.Time) (err error) {
	if publishedAt.IsZero() {
		publishedAt = s.clock.Now()
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: publish: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("docstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn,
		`UPDATE documents SET status = ?, updated_at = ?
		 WHERE group_slug = ? AND document_id = ? AND language = ?
		   AND version != ? AND status = ?`,
		&sqlitex.ExecOptions{
			Args: []any{
				document.StatusDraft.String(), s.clock.Now().UnixNano(),
				group.String(), id.String(), language.String(),
				int(version), document.StatusPublished.String(),
			},
		})
	if err != nil {
		return fmt.Errorf("docstore: demote siblings of %s/%s: %w", group, id, err)
	}
	demoted := conn.Changes()

	err = sqlitex.Execute(conn,
		`UPDATE documents SET status = ?, published_at = ?, updated_at = ?
		 WHERE group_slug = ? AND document_id = ? AND language = ? AND version = ?`,
		&sqlitex.ExecOptions{
			Args: []any{
				document.StatusPublished.String(), publishedAt.UnixNano(), s.clock.Now().UnixNano(),
				group.String(), id.String(), language.String(), int(version),
			},
		})
	if err != nil {
		return fmt.Errorf("docstore: publish %s/%s: %w", group, id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: %s/%s %s version %s", ErrVersionNotFound, group, id, language, version)
	}

	s.logger.Info("version published",
		"group", group.String(),
		"document", id.String(),
		"language", language.String(),
		"version", version.String(),
		"demoted", demoted,
	)
	return nil
}

// DeleteVersion removes one version cell. The version number is
// never reused: fork allocation works from max(existing)+1, and a
// deleted maximum stays visible through the next allocation only if
// callers track it, so editors that care snapshot ListVersions before
// deleting.
func (s *Store) DeleteVersion(ctx context.Context, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: delete version: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM documents
		 WHERE group_slug = ? AND document_id = ? AND language = ? AND version = ?`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String(), language.String(), int(version)},
		})
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s version %s: %w", group, id, version, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("%w: %s/%s %s version %s", ErrVersionNotFound, group, id, language, version)
	}

	s.logger.Info("version deleted",
		"group", group.String(),
		"document", id.String(),
		"language", language.String(),
		"version", version.String(),
	)
	return nil
}

// VersionInfo is one row of a version listing.
type VersionInfo struct {
	Version   ref.Version
	Status    document.Status
	UpdatedAt time.Time
}

// ListVersions returns a language's versions in ascending order.
// Legacy rows (version zero) are included so callers can show
// unmigrated documents.
func (s *Store) ListVersions(ctx context.Context, group ref.Group, id ref.DocumentID, language ref.Language) ([]VersionInfo, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: list versions: %w", err)
	}
	defer s.pool.Put(conn)

	var versions []VersionInfo
	err = sqlitex.Execute(conn,
		`SELECT version, status, updated_at FROM documents
		 WHERE group_slug = ? AND document_id = ? AND language = ?
		 ORDER BY version`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String(), language.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				status, err := document.ParseStatus(stmt.ColumnText(1))
				if err != nil {
					return err
				}
				versions = append(versions, VersionInfo{
					Version:   ref.Version(stmt.ColumnInt(0)),
					Status:    status,
					UpdatedAt: time.Unix(0, stmt.ColumnInt64(2)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: list versions of %s/%s: %w", group, id, err)
	}
	return versions, nil
}

// LanguageInfo is one row of a language listing: the language plus
// its effective status (published version's if any, else newest
// version's).
type LanguageInfo struct {
	Language ref.Language
	Status   document.Status
}

// ListLanguages returns the languages a document has content in,
// with each language's effective status.
func (s *Store) ListLanguages(ctx context.Context, group ref.Group, id ref.DocumentID) ([]LanguageInfo, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: list languages: %w", err)
	}
	defer s.pool.Put(conn)

	siblings, err := loadSiblings(conn, group, id)
	if err != nil {
		return nil, err
	}

	var languages []LanguageInfo
	statuses := make(map[string]document.Status)
	published := make(map[string]bool)
	for _, row := range siblings {
		if _, seen := statuses[row.language]; !seen {
			language, err := ref.ParseLanguage(row.language)
			if err != nil {
				return nil, fmt.Errorf("docstore: stored language %q: %w", row.language, err)
			}
			languages = append(languages, LanguageInfo{Language: language})
		}
		if row.status == document.StatusPublished {
			published[row.language] = true
			statuses[row.language] = document.StatusPublished
		} else if !published[row.language] {
			statuses[row.language] = row.status
		}
	}
	for i := range languages {
		languages[i].Status = statuses[languages[i].Language.String()]
	}
	return languages, nil
}

// DocumentInfo is one row of a group listing.
type DocumentInfo struct {
	ID        ref.DocumentID
	Title     string
	Languages int
	Versions  int
	UpdatedAt time.Time
}

// ListDocuments returns every document in a group, ordered by most
// recent update. The title shown is the primary language's.
func (s *Store) ListDocuments(ctx context.Context, group ref.Group) ([]DocumentInfo, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: list documents: %w", err)
	}
	defer s.pool.Put(conn)

	var documents []DocumentInfo
	err = sqlitex.Execute(conn,
		`SELECT document_id,
		        (SELECT title FROM documents AS inner_rows
		         WHERE inner_rows.group_slug = outer_rows.group_slug
		           AND inner_rows.document_id = outer_rows.document_id
		           AND inner_rows.language = outer_rows.primary_language
		         ORDER BY inner_rows.version DESC LIMIT 1),
		        COUNT(DISTINCT language),
		        COUNT(DISTINCT version),
		        MAX(updated_at)
		 FROM documents AS outer_rows
		 WHERE group_slug = ?
		 GROUP BY document_id
		 ORDER BY MAX(updated_at) DESC`,
		&sqlitex.ExecOptions{
			Args: []any{group.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id, err := ref.ParseDocumentID(stmt.ColumnText(0))
				if err != nil {
					return fmt.Errorf("stored document id: %w", err)
				}
				documents = append(documents, DocumentInfo{
					ID:        id,
					Title:     stmt.ColumnText(1),
					Languages: stmt.ColumnInt(2),
					Versions:  stmt.ColumnInt(3),
					UpdatedAt: time.Unix(0, stmt.ColumnInt64(4)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: list documents of %s: %w", group, err)
	}
	return documents, nil
}
