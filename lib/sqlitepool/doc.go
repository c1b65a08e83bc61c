// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the shared SQLite connection pool used by
// Pressroom's storage packages.
//
// It wraps zombiezen.com/go/sqlite with the settings document storage
// needs: WAL journal mode so editors reading a document never block a
// save, NORMAL synchronous for crash durability without per-commit
// fsync cost, a generous busy timeout to absorb publish transactions,
// and foreign keys enabled because the document schema relies on them
// to cascade version deletes.
//
// Callers [Pool.Take] a connection, do their work, and [Pool.Put] it
// back. Connections are not safe for concurrent use; each goroutine
// holds its own for the duration of its work.
//
// The package is deliberately thin. It applies pragmas and exposes the
// underlying zombiezen types directly: storage code writes SQL, uses
// sqlitex.Execute for cached statements, and opens transactions with
// sqlitex.ImmediateTransaction. There is no query builder and no
// attempt to hide SQLite's connection model.
package sqlitepool
