// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Pressroom's standard binary encoding: CBOR
// with Core Deterministic Encoding. Document metadata blobs in the
// store and form snapshots in the presence registry all go through
// this package, so consumers never import the CBOR library directly.
//
// Deterministic encoding matters here: equal logical values produce
// identical bytes, which lets the save path compare encoded snapshots
// to decide whether anything actually changed.
package codec
