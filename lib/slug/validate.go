// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// Validation outcomes. The save orchestrator branches on these with
// errors.Is; user-facing message mapping lives in lib/session.
var (
	// ErrInvalidFormat: not lowercase/digits/hyphens, or too long.
	ErrInvalidFormat = errors.New("slug: invalid format")

	// ErrReservedLanguageCode: the slug would shadow a language
	// prefix in document URLs ("/en/...", "/de/...").
	ErrReservedLanguageCode = errors.New("slug: reserved language code")

	// ErrReservedRouteWord: the slug would shadow a fixed route
	// segment of the host application.
	ErrReservedRouteWord = errors.New("slug: reserved route word")

	// ErrDirectoryCollision: another document in the group uses this
	// token as its directory slug.
	ErrDirectoryCollision = errors.New("slug: conflicts with a directory slug")

	// ErrSlugTaken: another document in the group already claimed
	// this URL slug (in any language).
	ErrSlugTaken = errors.New("slug: already in use")
)

// slugPattern is the URL slug grammar: lowercase alphanumeric runs
// joined by single hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// maxSlugLength bounds custom URL slugs. Longer than the document
// slug limit because editors paste whole titles here.
const maxSlugLength = 96

// Lookup is the store surface the validator needs: slug occupancy
// checks scoped to a group. Implemented by lib/docstore.
type Lookup interface {
	// URLSlugInUse reports whether any document other than exclude
	// holds the URL slug, in any language, within the group.
	URLSlugInUse(ctx context.Context, group ref.Group, slug string, exclude ref.DocumentID) (bool, error)

	// DirectorySlugInUse reports whether any document other than
	// exclude uses the token as its directory slug within the group.
	DirectorySlugInUse(ctx context.Context, group ref.Group, slug string, exclude ref.DocumentID) (bool, error)
}

// Config holds the parameters for creating a Validator.
type Config struct {
	// Lookup performs the collision checks. Required.
	Lookup Lookup

	// RouteWords are host router segments that slugs must not
	// shadow (e.g., "admin", "api", "sitemap"). Merged with nothing
	// by default: an empty list reserves no route words.
	RouteWords []string

	// ExtraLanguageCodes extends the built-in ISO 639-1 set with
	// deployment-specific codes (regional variants like "pt-br").
	ExtraLanguageCodes []string
}

// Validator checks custom URL slugs. Safe for concurrent use.
type Validator struct {
	lookup            Lookup
	reservedRoutes    map[string]struct{}
	reservedLanguages map[string]struct{}
}

// NewValidator creates a Validator. Returns an error if the config
// lacks a Lookup.
func NewValidator(cfg Config) (*Validator, error) {
	if cfg.Lookup == nil {
		return nil, fmt.Errorf("slug: Lookup is required")
	}

	reservedRoutes := make(map[string]struct{}, len(cfg.RouteWords))
	for _, word := range cfg.RouteWords {
		reservedRoutes[word] = struct{}{}
	}

	reservedLanguages := make(map[string]struct{}, len(iso639codes)+len(cfg.ExtraLanguageCodes))
	for _, code := range iso639codes {
		reservedLanguages[code] = struct{}{}
	}
	for _, code := range cfg.ExtraLanguageCodes {
		reservedLanguages[code] = struct{}{}
	}

	return &Validator{
		lookup:            cfg.Lookup,
		reservedRoutes:    reservedRoutes,
		reservedLanguages: reservedLanguages,
	}, nil
}

// ValidateURLSlug checks a requested custom URL slug for a document.
// An empty slug is always valid (it means "no custom slug"). The
// exclude identifier removes the document's own rows from collision
// checks so re-saving an unchanged slug passes.
//
// Check order is cheapest-first and the first failure wins: format,
// reserved words, then the two store lookups.
func (v *Validator) ValidateURLSlug(ctx context.Context, group ref.Group, slug string, exclude ref.DocumentID) error {
	if slug == "" {
		return nil
	}
	if len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, slug)
	}
	if _, reserved := v.reservedLanguages[slug]; reserved {
		return fmt.Errorf("%w: %q", ErrReservedLanguageCode, slug)
	}
	if _, reserved := v.reservedRoutes[slug]; reserved {
		return fmt.Errorf("%w: %q", ErrReservedRouteWord, slug)
	}

	inUse, err := v.lookup.DirectorySlugInUse(ctx, group, slug, exclude)
	if err != nil {
		return fmt.Errorf("slug: directory lookup: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: %q", ErrDirectoryCollision, slug)
	}

	inUse, err = v.lookup.URLSlugInUse(ctx, group, slug, exclude)
	if err != nil {
		return fmt.Errorf("slug: url lookup: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: %q", ErrSlugTaken, slug)
	}
	return nil
}

// IsCollision reports whether a validation error is a soft collision
// (auto-clear and proceed) rather than a hard violation (block the
// save).
func IsCollision(err error) bool {
	return errors.Is(err, ErrDirectoryCollision) || errors.Is(err, ErrSlugTaken)
}
