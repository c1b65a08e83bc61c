// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"time"
)

// failer is the subset of *testing.T that the helpers need. Declared
// locally so testutil does not import the testing package into
// production builds.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test with the given description.
//
//	event := testutil.RequireReceive(t, events, 5*time.Second, "editor-saved event")
func RequireReceive[T any](t failer, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for %s", what)
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, what)
	}
	panic("unreachable")
}

// RequireNoReceive asserts that ch stays silent for the given window.
// Use sparingly — it costs the full window on success — but it is the
// only way to assert a broadcast was correctly suppressed.
func RequireNoReceive[T any](t failer, ch <-chan T, window time.Duration, what string) {
	t.Helper()
	select {
	case value := <-ch:
		t.Fatalf("unexpected %s: %v", what, value)
	case <-time.After(window):
	}
}

// RequireClosed waits for ch to close (or deliver) within timeout, or
// fails the test.
func RequireClosed(t failer, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, what)
	}
}
