// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/pressroom/lib/clock"
	"github.com/bureau-foundation/pressroom/lib/codec"
	"github.com/bureau-foundation/pressroom/lib/document"
	"github.com/bureau-foundation/pressroom/lib/ref"
	"github.com/bureau-foundation/pressroom/lib/sqlitepool"
)

var (
	// ErrNotFound: no stored content for the requested document and
	// language.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrVersionNotFound: the document exists but the requested
	// version does not.
	ErrVersionNotFound = errors.New("docstore: version not found")

	// ErrExists: an insert-only write hit an existing cell. The
	// caller lost a creation race and should re-read.
	ErrExists = errors.New("docstore: document already exists")
)

// Config holds the parameters for opening a store.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string

	// PoolSize is the connection pool size. Zero selects the pool
	// default.
	PoolSize int

	// Clock stamps created_at and updated_at. Defaults to the real
	// clock.
	Clock clock.Clock

	// Logger receives operational messages. Nil discards them.
	Logger *slog.Logger
}

// Store persists documents in a single SQLite database. Safe for
// concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		group_slug       TEXT NOT NULL,
		document_id      TEXT NOT NULL,
		language         TEXT NOT NULL,
		version          INTEGER NOT NULL,
		primary_language TEXT NOT NULL,
		title            TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		published_at     INTEGER,
		url_slug         TEXT NOT NULL DEFAULT '',
		directory_slug   TEXT NOT NULL DEFAULT '',
		meta             BLOB,
		body             BLOB NOT NULL,
		body_size        INTEGER NOT NULL,
		body_encoding    TEXT NOT NULL,
		created_at       INTEGER NOT NULL,
		updated_at       INTEGER NOT NULL,
		PRIMARY KEY (group_slug, document_id, language, version)
	);
	CREATE INDEX IF NOT EXISTS idx_documents_url_slug
		ON documents(group_slug, url_slug) WHERE url_slug != '';
	CREATE INDEX IF NOT EXISTS idx_documents_directory
		ON documents(group_slug, directory_slug) WHERE directory_slug != '';
`

// rowMeta is the CBOR-encoded presentation metadata nobody queries
// on. Stored as a blob so new fields never need a migration.
type rowMeta struct {
	FeaturedImage string `cbor:"featured_image,omitempty"`
}

// Open creates or opens a store. The caller must Close it.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("docstore: Path is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Size:   cfg.PoolSize,
		Logger: logger,
		Setup: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("docstore: %w", err)
	}

	return &Store{pool: pool, clock: clk, logger: logger}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Write upserts one (group, document, language, version) cell. A new
// cell gets created_at from the clock; an existing cell keeps its
// created_at and only updated_at moves. The status maps on doc are
// ignored — they are derived, not stored.
func (s *Store) Write(ctx context.Context, doc *document.Document) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: write: %w", err)
	}
	defer s.pool.Put(conn)
	return s.writeCell(conn, doc, true)
}

// Create inserts one cell and fails with ErrExists if it is already
// present. This is the path for brand-new documents and for new
// translations, where overwriting a racing writer must not happen.
func (s *Store) Create(ctx context.Context, doc *document.Document) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: create: %w", err)
	}
	defer s.pool.Put(conn)
	return s.writeCell(conn, doc, false)
}

// CreateVersionFrom inserts a forked version cell in one transaction,
// verifying the source version still exists. Returns
// ErrVersionNotFound when the source is gone (deleted under the
// editor's feet) and ErrExists when the fork target is taken.
func (s *Store) CreateVersionFrom(ctx context.Context, source ref.Version, forked *document.Document) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: create version: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("docstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	exists, err := cellExists(conn, forked.Group, forked.ID, forked.Language, source)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s version %s", ErrVersionNotFound, forked.ID, source)
	}

	return s.writeCell(conn, forked, false)
}

// writeCell performs the insert. With overwrite, an existing cell is
// updated in place (created_at preserved); without it, a conflict
// returns ErrExists.
func (s *Store) writeCell(conn *sqlite.Conn, doc *document.Document, overwrite bool) error {
	now := s.clock.Now()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	body, encoding := encodeBody(doc.Body)

	var meta any
	if doc.FeaturedImage != "" {
		encoded, err := codec.Marshal(rowMeta{FeaturedImage: doc.FeaturedImage})
		if err != nil {
			return fmt.Errorf("docstore: encode meta: %w", err)
		}
		meta = encoded
	}

	conflict := `ON CONFLICT(group_slug, document_id, language, version) DO UPDATE SET
			title = excluded.title,
			status = excluded.status,
			published_at = excluded.published_at,
			url_slug = excluded.url_slug,
			directory_slug = excluded.directory_slug,
			meta = excluded.meta,
			body = excluded.body,
			body_size = excluded.body_size,
			body_encoding = excluded.body_encoding,
			updated_at = excluded.updated_at`
	if !overwrite {
		conflict = "ON CONFLICT DO NOTHING"
	}

	query := `INSERT INTO documents
		(group_slug, document_id, language, version, primary_language,
		 title, status, published_at, url_slug, directory_slug, meta,
		 body, body_size, body_encoding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ` + conflict

	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{
			doc.Group.String(),
			doc.ID.String(),
			doc.Language.String(),
			int(doc.Version),
			doc.PrimaryLanguage.String(),
			doc.Title,
			doc.Status.String(),
			nullableTime(doc.PublishedAt),
			doc.URLSlug,
			doc.DirectorySlug,
			meta,
			body,
			len(doc.Body),
			encoding,
			createdAt.UnixNano(),
			now.UnixNano(),
		},
	})
	if err != nil {
		return fmt.Errorf("docstore: write %s/%s: %w", doc.Group, doc.ID, err)
	}
	if !overwrite && conn.Changes() == 0 {
		return fmt.Errorf("%w: %s/%s %s version %s", ErrExists, doc.Group, doc.ID, doc.Language, doc.Version)
	}
	return nil
}

// Read loads one cell and materializes the sibling status maps.
//
// A zero version asks for resolution: the legacy row if the document
// predates versioning, otherwise the published version for the
// language, otherwise the newest version. A concrete version is read
// exactly; if the document exists but that version does not, the
// error is ErrVersionNotFound rather than ErrNotFound so callers can
// tell a stale version pointer from a missing document.
func (s *Store) Read(ctx context.Context, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) (*document.Document, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore: read: %w", err)
	}
	defer s.pool.Put(conn)

	siblings, err := loadSiblings(conn, group, id)
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, group, id)
	}

	target, err := resolveVersion(siblings, language, version)
	if err != nil {
		return nil, fmt.Errorf("%w (%s/%s %s)", err, group, id, language)
	}

	doc, err := scanDocument(conn, group, id, language, target)
	if err != nil {
		return nil, err
	}
	materializeMaps(doc, siblings)
	return doc, nil
}

// siblingRow is the slice of a documents row needed for version
// resolution and status-map materialization.
type siblingRow struct {
	language string
	version  ref.Version
	status   document.Status
}

func loadSiblings(conn *sqlite.Conn, group ref.Group, id ref.DocumentID) ([]siblingRow, error) {
	var rows []siblingRow
	err := sqlitex.Execute(conn,
		`SELECT language, version, status FROM documents
		 WHERE group_slug = ? AND document_id = ?
		 ORDER BY language, version`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				status, err := document.ParseStatus(stmt.ColumnText(2))
				if err != nil {
					return err
				}
				rows = append(rows, siblingRow{
					language: stmt.ColumnText(0),
					version:  ref.Version(stmt.ColumnInt(1)),
					status:   status,
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: siblings of %s/%s: %w", group, id, err)
	}
	return rows, nil
}

// resolveVersion picks the version to read for a language. Siblings
// are ordered by (language, version), so the last row for a language
// is its newest version.
func resolveVersion(siblings []siblingRow, language ref.Language, requested ref.Version) (ref.Version, error) {
	code := language.String()
	found := false
	newest := ref.Version(0)
	published := ref.Version(0)
	hasPublished := false

	for _, row := range siblings {
		if row.language != code {
			continue
		}
		found = true
		if row.version == requested && !requested.IsZero() {
			return requested, nil
		}
		if row.version >= newest {
			newest = row.version
		}
		if row.status == document.StatusPublished {
			published = row.version
			hasPublished = true
		}
	}

	if !found {
		return 0, ErrNotFound
	}
	if !requested.IsZero() {
		return 0, ErrVersionNotFound
	}
	if hasPublished {
		return published, nil
	}
	return newest, nil
}

// scanDocument reads the full target row.
func scanDocument(conn *sqlite.Conn, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) (*document.Document, error) {
	var doc *document.Document
	var scanErr error

	err := sqlitex.Execute(conn,
		`SELECT primary_language, title, status, published_at, url_slug,
		        directory_slug, meta, body, body_size, body_encoding,
		        created_at, updated_at
		 FROM documents
		 WHERE group_slug = ? AND document_id = ? AND language = ? AND version = ?`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String(), language.String(), int(version)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				doc, scanErr = scanRow(stmt, group, id, language, version)
				return scanErr
			},
		})
	if err != nil {
		return nil, fmt.Errorf("docstore: read %s/%s: %w", group, id, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s/%s %s version %s", ErrVersionNotFound, group, id, language, version)
	}
	return doc, nil
}

func scanRow(stmt *sqlite.Stmt, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) (*document.Document, error) {
	// Columns: primary_language(0), title(1), status(2),
	// published_at(3), url_slug(4), directory_slug(5), meta(6),
	// body(7), body_size(8), body_encoding(9), created_at(10),
	// updated_at(11)

	primary, err := ref.ParseLanguage(stmt.ColumnText(0))
	if err != nil {
		return nil, fmt.Errorf("docstore: stored primary language: %w", err)
	}
	status, err := document.ParseStatus(stmt.ColumnText(2))
	if err != nil {
		return nil, fmt.Errorf("docstore: stored status: %w", err)
	}

	stored := make([]byte, stmt.ColumnLen(7))
	stmt.ColumnBytes(7, stored)
	body, err := decodeBody(stored, stmt.ColumnText(9), stmt.ColumnInt(8))
	if err != nil {
		return nil, err
	}

	doc := &document.Document{
		Group:           group,
		ID:              id,
		Language:        language,
		Version:         version,
		PrimaryLanguage: primary,
		Title:           stmt.ColumnText(1),
		Status:          status,
		URLSlug:         stmt.ColumnText(4),
		DirectorySlug:   stmt.ColumnText(5),
		Body:            body,
		CreatedAt:       time.Unix(0, stmt.ColumnInt64(10)),
		UpdatedAt:       time.Unix(0, stmt.ColumnInt64(11)),
	}
	if !stmt.ColumnIsNull(3) {
		doc.PublishedAt = time.Unix(0, stmt.ColumnInt64(3))
	}
	if !stmt.ColumnIsNull(6) {
		blob := make([]byte, stmt.ColumnLen(6))
		stmt.ColumnBytes(6, blob)
		var meta rowMeta
		if err := codec.Unmarshal(blob, &meta); err != nil {
			return nil, fmt.Errorf("docstore: stored meta: %w", err)
		}
		doc.FeaturedImage = meta.FeaturedImage
	}
	return doc, nil
}

// materializeMaps fills the derived language and version maps from
// sibling rows. A language's status is its published version's status
// when one exists, otherwise its newest version's.
func materializeMaps(doc *document.Document, siblings []siblingRow) {
	doc.LanguageStatuses = make(map[string]document.Status)
	doc.VersionStatuses = make(map[ref.Version]document.Status)
	doc.AvailableLanguages = nil
	doc.AvailableVersions = nil

	code := doc.Language.String()
	published := make(map[string]bool)

	// Siblings arrive ordered by (language, version), so for a
	// language without a published version the loop leaves its
	// newest version's status in place.
	for _, row := range siblings {
		if _, seen := doc.LanguageStatuses[row.language]; !seen {
			if language, err := ref.ParseLanguage(row.language); err == nil {
				doc.AvailableLanguages = append(doc.AvailableLanguages, language)
			}
		}
		if row.status == document.StatusPublished {
			published[row.language] = true
			doc.LanguageStatuses[row.language] = document.StatusPublished
		} else if !published[row.language] {
			doc.LanguageStatuses[row.language] = row.status
		}
		if row.language == code && !row.version.IsZero() {
			doc.AvailableVersions = append(doc.AvailableVersions, row.version)
			doc.VersionStatuses[row.version] = row.status
		}
	}
}

// nullableTime converts a time to a bind value, NULL for the zero
// time.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixNano()
}

func cellExists(conn *sqlite.Conn, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) (bool, error) {
	var exists bool
	err := sqlitex.Execute(conn,
		`SELECT 1 FROM documents
		 WHERE group_slug = ? AND document_id = ? AND language = ? AND version = ?`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String(), language.String(), int(version)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				exists = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("docstore: existence check %s/%s: %w", group, id, err)
	}
	return exists, nil
}
