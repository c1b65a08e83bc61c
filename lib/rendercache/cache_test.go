// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rendercache_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bureau-foundation/pressroom/lib/ref"
	"github.com/bureau-foundation/pressroom/lib/rendercache"
)

func testKey(t *testing.T, document string, language string) (ref.Group, ref.DocumentID, ref.Language) {
	t.Helper()
	group, err := ref.ParseGroup("blog")
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	id, err := ref.ParseDocumentID(document)
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	lang, err := ref.ParseLanguage(language)
	if err != nil {
		t.Fatalf("ParseLanguage: %v", err)
	}
	return group, id, lang
}

func TestRenderMarkdown(t *testing.T) {
	cache := rendercache.New(rendercache.Config{})
	group, id, language := testKey(t, "release-notes", "en")

	rendered, err := cache.Render(group, id, language, "# Heading\n\nSome ~~old~~ text.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rendered, "<h1") {
		t.Errorf("rendered output missing heading: %q", rendered)
	}
	// Strikethrough comes from the GFM extension set.
	if !strings.Contains(rendered, "<del>old</del>") {
		t.Errorf("rendered output missing GFM strikethrough: %q", rendered)
	}
}

func TestCacheHitSkipsRerender(t *testing.T) {
	cache := rendercache.New(rendercache.Config{})
	group, id, language := testKey(t, "release-notes", "en")

	first, err := cache.Render(group, id, language, "original")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Without invalidation the cache serves the stored render even
	// though the input changed.
	second, err := cache.Render(group, id, language, "changed")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if second != first {
		t.Errorf("cache miss on identical key: %q vs %q", second, first)
	}
}

func TestInvalidate(t *testing.T) {
	cache := rendercache.New(rendercache.Config{})
	group, id, language := testKey(t, "release-notes", "en")

	if _, err := cache.Render(group, id, language, "original"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cache.Invalidate(group, id, language)

	rendered, err := cache.Render(group, id, language, "changed")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rendered, "changed") {
		t.Errorf("stale render after invalidation: %q", rendered)
	}
}

func TestInvalidateDocumentDropsAllLanguages(t *testing.T) {
	cache := rendercache.New(rendercache.Config{})
	group, id, english := testKey(t, "release-notes", "en")
	_, _, german := testKey(t, "release-notes", "de")
	_, otherID, _ := testKey(t, "other-post", "en")

	for _, language := range []ref.Language{english, german} {
		if _, err := cache.Render(group, id, language, "body"); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if _, err := cache.Render(group, otherID, english, "body"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	cache.InvalidateDocument(group, id)

	if got := cache.Len(); got != 1 {
		t.Errorf("Len = %d after document invalidation, want 1 (unrelated document kept)", got)
	}
}

func TestEvictionHonorsCap(t *testing.T) {
	cache := rendercache.New(rendercache.Config{MaxEntries: 4})
	group, _, language := testKey(t, "release-notes", "en")

	for i := 0; i < 10; i++ {
		id, err := ref.ParseDocumentID(fmt.Sprintf("post-%d", i))
		if err != nil {
			t.Fatalf("ParseDocumentID: %v", err)
		}
		if _, err := cache.Render(group, id, language, "body"); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	if got := cache.Len(); got != 4 {
		t.Errorf("Len = %d, want cap of 4", got)
	}
}
