// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly.
//
// Pressroom's timer-driven code (the lock expiration monitor, store
// timestamps) must never call the time package directly for Now,
// After, or NewTicker — it goes through a Clock so that a 30-minute
// inactivity timeout is testable in milliseconds.
package clock
