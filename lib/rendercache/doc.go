// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rendercache renders document markdown to HTML and caches
// the result per (group, document, language).
//
// Rendering runs on goldmark with GFM extensions, matching what the
// public site serves. The cache is a bounded FIFO: entries are filled
// on miss and evicted oldest-first once the cap is reached. There is
// no TTL — a cached page only becomes wrong when the document
// changes, and the save path tells us exactly when that happens via
// [Cache.Invalidate] and [Cache.InvalidateDocument].
package rendercache
