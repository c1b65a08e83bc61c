// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds shared test helpers: channel operations with
// timeout safety valves so a broken broadcast path fails a test
// instead of hanging the suite.
package testutil
