// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// URLSlugInUse reports whether any document other than exclude claims
// the URL slug anywhere in the group, in any language or version.
func (s *Store) URLSlugInUse(ctx context.Context, group ref.Group, slug string, exclude ref.DocumentID) (bool, error) {
	return s.slugInUse(ctx, "url_slug", group, slug, exclude)
}

// DirectorySlugInUse reports whether any document other than exclude
// uses the token as its directory slug within the group.
func (s *Store) DirectorySlugInUse(ctx context.Context, group ref.Group, slug string, exclude ref.DocumentID) (bool, error) {
	return s.slugInUse(ctx, "directory_slug", group, slug, exclude)
}

// ClearURLSlug blanks the URL slug on every cell of the document that
// carries it, across all languages and versions.
func (s *Store) ClearURLSlug(ctx context.Context, group ref.Group, id ref.DocumentID, slug string) error {
	if slug == "" {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("docstore: clear slug: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE documents SET url_slug = ''
		 WHERE group_slug = ? AND document_id = ? AND url_slug = ?`,
		&sqlitex.ExecOptions{
			Args: []any{group.String(), id.String(), slug},
		})
	if err != nil {
		return fmt.Errorf("docstore: clear slug %q on %s/%s: %w", slug, group, id, err)
	}
	return nil
}

func (s *Store) slugInUse(ctx context.Context, column string, group ref.Group, slug string, exclude ref.DocumentID) (bool, error) {
	if slug == "" {
		return false, nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("docstore: slug lookup: %w", err)
	}
	defer s.pool.Put(conn)

	// column is one of two compile-time constants, never user input.
	query := `SELECT 1 FROM documents
		 WHERE group_slug = ? AND ` + column + ` = ? AND document_id != ? LIMIT 1`

	var inUse bool
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{group.String(), slug, exclude.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			inUse = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("docstore: %s lookup in %s: %w", column, group, err)
	}
	return inUse, nil
}
