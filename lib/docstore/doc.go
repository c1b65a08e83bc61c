// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package docstore persists documents in SQLite.
//
// One table holds every (group, document, language, version) cell.
// Queried metadata (title, status, slugs, timestamps) lives in
// columns; presentation metadata nobody filters on is a CBOR blob;
// bodies are zstd-compressed when that actually shrinks them, with
// the original size stored alongside for exact-size decompression.
//
// The cross-language and cross-version status maps on
// [document.Document] are never stored. They are materialized from
// sibling rows at read time, so a language's status can never drift
// from the rows that define it.
//
// Writes fall into two shapes: [Store.Write] upserts a cell (the
// normal save path), while [Store.Create] and
// [Store.CreateVersionFrom] insert-only and report [ErrExists] when
// the cell is already there. The insert-only shape is what makes
// concurrent new-translation saves safe: the loser of the race gets
// ErrExists instead of silently overwriting the winner.
//
// [Store.PublishVersion] is the only multi-row write. It runs in an
// IMMEDIATE transaction and demotes any previously published sibling
// version to draft, so a language never has two published versions.
package docstore
