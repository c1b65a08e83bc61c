// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package slug validates custom URL slugs before they enter the
// store. A slug must parse, must not shadow a language code or a
// fixed route segment of the host router, and must not collide with
// another document's slug (URL or directory-style) in the same group.
//
// The validator only classifies; policy lives with the caller. The
// save orchestrator treats format and reserved-word violations as
// hard errors and collisions as soft conflicts (the offending slug is
// cleared and the save proceeds with a notice).
package slug
