// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strconv"
)

// Version is a document version number. Versions start at 1 and only
// ever grow — forking a document allocates max(existing)+1, and
// deleted version numbers are never reused.
//
// The zero Version means "unversioned": either a legacy flat document
// that predates versioning, or an operation that addresses a document
// without selecting a version.
type Version int

// ParseVersion parses a positive decimal version number.
func ParseVersion(raw string) (Version, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("version %q: %w", raw, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("version must be positive, got %d", value)
	}
	return Version(value), nil
}

// String returns the decimal version number, or "unversioned" for the
// zero value.
func (v Version) String() string {
	if v.IsZero() {
		return "unversioned"
	}
	return strconv.Itoa(int(v))
}

// IsZero reports whether the Version is zero (unversioned).
func (v Version) IsZero() bool { return v == 0 }

// NextVersion returns the version number a fork should allocate:
// one greater than the highest in available. Returns 1 when available
// is empty.
func NextVersion(available []Version) Version {
	highest := Version(0)
	for _, version := range available {
		if version > highest {
			highest = version
		}
	}
	return highest + 1
}
