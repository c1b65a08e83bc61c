// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package document models a content unit — a post — and the rules
// governing its lifecycle: per-language publish status, numbered
// versions with copy-on-write forking, and translation status
// inheritance.
//
// The decision functions here (ShouldForkVersion, EffectiveStatus,
// ContentChanged) are pure: they look only at the document value and
// the proposed edit, never at the store or the clock. The save
// orchestrator in lib/session composes them with store calls; keeping
// them pure is what makes the state machine testable without a
// database.
package document
