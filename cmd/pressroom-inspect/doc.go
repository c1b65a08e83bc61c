// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// pressroom-inspect is a read-only command-line inspector for a
// Pressroom document store. It lists documents, languages, and
// versions, and prints individual document cells, straight from the
// SQLite file — no server required.
package main
