// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// Language is a validated language code: a 2-3 letter lowercase base
// ("en", "de") with an optional lowercase region suffix ("pt-br").
// Pressroom treats codes as opaque beyond this shape — it does not
// consult an ISO registry, because deployments routinely define
// in-house codes for regional variants.
//
// Language is an immutable value type. The zero value is not valid;
// use IsZero to check.
type Language struct {
	code string
}

// ParseLanguage validates and wraps a raw language code.
func ParseLanguage(raw string) (Language, error) {
	base, region, hasRegion := strings.Cut(raw, "-")
	if err := validateAlphaSegment(base, 2, 3); err != nil {
		return Language{}, fmt.Errorf("language code %q: %w", raw, err)
	}
	if hasRegion {
		if err := validateAlphaSegment(region, 2, 3); err != nil {
			return Language{}, fmt.Errorf("language code %q region: %w", raw, err)
		}
	}
	return Language{code: raw}, nil
}

// String returns the language code (e.g., "en", "pt-br").
func (l Language) String() string { return l.code }

// IsZero reports whether the Language is the zero value.
func (l Language) IsZero() bool { return l.code == "" }

func validateAlphaSegment(segment string, minLength, maxLength int) error {
	if len(segment) < minLength || len(segment) > maxLength {
		return fmt.Errorf("segment must be %d-%d letters", minLength, maxLength)
	}
	for i := 0; i < len(segment); i++ {
		if segment[i] < 'a' || segment[i] > 'z' {
			return fmt.Errorf("invalid character %q (lowercase letters only)", segment[i])
		}
	}
	return nil
}
