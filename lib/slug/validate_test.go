// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/bureau-foundation/pressroom/lib/ref"
)

// fakeLookup is an in-memory Lookup: sets of occupied slugs per kind.
type fakeLookup struct {
	urlSlugs       map[string]ref.DocumentID // slug → owning document
	directorySlugs map[string]ref.DocumentID
	err            error
}

func (f *fakeLookup) URLSlugInUse(_ context.Context, _ ref.Group, slug string, exclude ref.DocumentID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.urlSlugs[slug]
	return ok && owner != exclude, nil
}

func (f *fakeLookup) DirectorySlugInUse(_ context.Context, _ ref.Group, slug string, exclude ref.DocumentID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.directorySlugs[slug]
	return ok && owner != exclude, nil
}

func newTestValidator(t *testing.T, lookup *fakeLookup) *Validator {
	t.Helper()
	if lookup.urlSlugs == nil {
		lookup.urlSlugs = map[string]ref.DocumentID{}
	}
	if lookup.directorySlugs == nil {
		lookup.directorySlugs = map[string]ref.DocumentID{}
	}
	validator, err := NewValidator(Config{
		Lookup:             lookup,
		RouteWords:         []string{"admin", "api", "sitemap"},
		ExtraLanguageCodes: []string{"pt-br"},
	})
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return validator
}

func mustDocumentID(t *testing.T, raw string) ref.DocumentID {
	t.Helper()
	id, err := ref.ParseDocumentID(raw)
	if err != nil {
		t.Fatalf("ParseDocumentID(%q): %v", raw, err)
	}
	return id
}

func TestValidSlugPasses(t *testing.T) {
	validator := newTestValidator(t, &fakeLookup{})
	group, _ := ref.ParseGroup("blog")

	for _, slug := range []string{"", "hello", "hello-world", "v2-release-notes", "a1"} {
		if err := validator.ValidateURLSlug(context.Background(), group, slug, ref.DocumentID{}); err != nil {
			t.Errorf("ValidateURLSlug(%q): %v", slug, err)
		}
	}
}

func TestInvalidFormat(t *testing.T) {
	validator := newTestValidator(t, &fakeLookup{})
	group, _ := ref.ParseGroup("blog")

	for _, slug := range []string{"Hello", "hello_world", "-hello", "hello-", "he--llo", "héllo"} {
		err := validator.ValidateURLSlug(context.Background(), group, slug, ref.DocumentID{})
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ValidateURLSlug(%q) = %v, want ErrInvalidFormat", slug, err)
		}
	}
}

func TestReservedWords(t *testing.T) {
	validator := newTestValidator(t, &fakeLookup{})
	group, _ := ref.ParseGroup("blog")

	// Built-in ISO set and the configured extra code.
	for _, slug := range []string{"en", "de", "zh", "pt-br"} {
		err := validator.ValidateURLSlug(context.Background(), group, slug, ref.DocumentID{})
		if !errors.Is(err, ErrReservedLanguageCode) {
			t.Errorf("ValidateURLSlug(%q) = %v, want ErrReservedLanguageCode", slug, err)
		}
	}

	for _, slug := range []string{"admin", "api", "sitemap"} {
		err := validator.ValidateURLSlug(context.Background(), group, slug, ref.DocumentID{})
		if !errors.Is(err, ErrReservedRouteWord) {
			t.Errorf("ValidateURLSlug(%q) = %v, want ErrReservedRouteWord", slug, err)
		}
	}
}

func TestSlugCollisions(t *testing.T) {
	other := mustDocumentID(t, "other-post")
	lookup := &fakeLookup{
		urlSlugs:       map[string]ref.DocumentID{"taken": other},
		directorySlugs: map[string]ref.DocumentID{"existing-directory": other},
	}
	validator := newTestValidator(t, lookup)
	group, _ := ref.ParseGroup("blog")

	err := validator.ValidateURLSlug(context.Background(), group, "taken", ref.DocumentID{})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("taken slug = %v, want ErrSlugTaken", err)
	}
	if !IsCollision(err) {
		t.Error("ErrSlugTaken should classify as a collision")
	}

	err = validator.ValidateURLSlug(context.Background(), group, "existing-directory", ref.DocumentID{})
	if !errors.Is(err, ErrDirectoryCollision) {
		t.Errorf("directory collision = %v, want ErrDirectoryCollision", err)
	}
	if !IsCollision(err) {
		t.Error("ErrDirectoryCollision should classify as a collision")
	}
}

func TestOwnSlugExcluded(t *testing.T) {
	self := mustDocumentID(t, "my-post")
	lookup := &fakeLookup{
		urlSlugs: map[string]ref.DocumentID{"my-slug": self},
	}
	validator := newTestValidator(t, lookup)
	group, _ := ref.ParseGroup("blog")

	// Re-saving the document that owns the slug must pass.
	if err := validator.ValidateURLSlug(context.Background(), group, "my-slug", self); err != nil {
		t.Errorf("re-saving own slug: %v", err)
	}
}

func TestHardViolationsAreNotCollisions(t *testing.T) {
	validator := newTestValidator(t, &fakeLookup{})
	group, _ := ref.ParseGroup("blog")

	err := validator.ValidateURLSlug(context.Background(), group, "Nope", ref.DocumentID{})
	if IsCollision(err) {
		t.Error("format violation must not classify as a collision")
	}
}

func TestLookupErrorPropagates(t *testing.T) {
	storeDown := errors.New("store unreachable")
	validator := newTestValidator(t, &fakeLookup{err: storeDown})
	group, _ := ref.ParseGroup("blog")

	err := validator.ValidateURLSlug(context.Background(), group, "fine-slug", ref.DocumentID{})
	if !errors.Is(err, storeDown) {
		t.Errorf("lookup error = %v, want wrapped store error", err)
	}
	if IsCollision(err) {
		t.Error("lookup failure must not classify as a collision")
	}
}
