// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// Group is a validated content group slug (e.g., "blog", "docs").
// Groups namespace documents: every document lives in exactly one
// group, and slug uniqueness is enforced per group.
//
// Group is an immutable value type. The zero value is not valid;
// use IsZero to check.
type Group struct {
	slug string
}

// maxSlugLength bounds group and document slugs. Long enough for any
// reasonable title-derived slug, short enough to stay inside URL and
// filesystem limits with room for prefixes.
const maxSlugLength = 64

// ParseGroup validates and wraps a raw group slug. A group slug is
// 1-64 characters of lowercase letters, digits, and interior hyphens.
func ParseGroup(raw string) (Group, error) {
	if err := validateSlugToken(raw, maxSlugLength); err != nil {
		return Group{}, fmt.Errorf("group slug %q: %w", raw, err)
	}
	return Group{slug: raw}, nil
}

// String returns the group slug.
func (g Group) String() string { return g.slug }

// IsZero reports whether the Group is the zero value (uninitialized).
func (g Group) IsZero() bool { return g.slug == "" }

// validateSlugToken checks the shared slug grammar: non-empty,
// at most maxLength bytes, lowercase letters / digits / hyphens,
// no leading, trailing, or doubled hyphen.
func validateSlugToken(raw string, maxLength int) error {
	if raw == "" {
		return fmt.Errorf("empty slug")
	}
	if len(raw) > maxLength {
		return fmt.Errorf("slug exceeds %d characters", maxLength)
	}
	previousHyphen := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			previousHyphen = false
		case c == '-':
			if i == 0 || i == len(raw)-1 {
				return fmt.Errorf("slug must not start or end with a hyphen")
			}
			if previousHyphen {
				return fmt.Errorf("slug must not contain consecutive hyphens")
			}
			previousHyphen = true
		default:
			return fmt.Errorf("invalid character %q (lowercase letters, digits, and hyphens only)", c)
		}
	}
	return nil
}
