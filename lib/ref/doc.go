// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated identifier types for Pressroom:
// content groups, document identifiers, language codes, version
// numbers, edit-session keys, and connection IDs.
//
// All types are immutable value types constructed through Parse
// functions that validate at the boundary. Code deeper in the system
// never re-validates — holding a ref value means it is well-formed.
// The zero value of each type is not valid; use IsZero to check.
package ref
