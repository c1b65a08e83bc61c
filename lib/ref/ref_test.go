// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "testing"

func TestParseGroup(t *testing.T) {
	valid := []string{"blog", "docs", "release-notes", "a", "g2", "x-1-y"}
	for _, raw := range valid {
		group, err := ParseGroup(raw)
		if err != nil {
			t.Errorf("ParseGroup(%q): %v", raw, err)
			continue
		}
		if group.String() != raw {
			t.Errorf("ParseGroup(%q).String() = %q", raw, group.String())
		}
	}

	invalid := []string{"", "Blog", "blog_", "-blog", "blog-", "bl--og", "blog page", "café"}
	for _, raw := range invalid {
		if _, err := ParseGroup(raw); err == nil {
			t.Errorf("ParseGroup(%q) should fail", raw)
		}
	}
}

func TestParseDocumentIDSlugMode(t *testing.T) {
	id, err := ParseDocumentID("release-notes")
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	if id.Mode() != ModeSlug {
		t.Errorf("Mode = %q, want %q", id.Mode(), ModeSlug)
	}
}

func TestParseDocumentIDTimestampMode(t *testing.T) {
	id, err := ParseDocumentID("2026/08/30/142501")
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	if id.Mode() != ModeTimestamp {
		t.Errorf("Mode = %q, want %q", id.Mode(), ModeTimestamp)
	}
	if id.String() != "2026/08/30/142501" {
		t.Errorf("String = %q", id.String())
	}
}

func TestParseDocumentIDInvalid(t *testing.T) {
	invalid := []string{
		"",
		"2026/08/30",          // too few segments
		"2026/8/30/142501",    // short segment
		"2026/08/30/14250x",   // non-digit
		"2026/08/30/142501/1", // too many segments
		"UPPER",
	}
	for _, raw := range invalid {
		if _, err := ParseDocumentID(raw); err == nil {
			t.Errorf("ParseDocumentID(%q) should fail", raw)
		}
	}
}

func TestParseLanguage(t *testing.T) {
	valid := []string{"en", "de", "pt-br", "zh-cn", "fil"}
	for _, raw := range valid {
		if _, err := ParseLanguage(raw); err != nil {
			t.Errorf("ParseLanguage(%q): %v", raw, err)
		}
	}

	invalid := []string{"", "e", "EN", "pt_br", "pt-", "english", "en-GB"}
	for _, raw := range invalid {
		if _, err := ParseLanguage(raw); err == nil {
			t.Errorf("ParseLanguage(%q) should fail", raw)
		}
	}
}

func TestNextVersion(t *testing.T) {
	if got := NextVersion(nil); got != 1 {
		t.Errorf("NextVersion(nil) = %v, want 1", got)
	}
	if got := NextVersion([]Version{1, 2, 3}); got != 4 {
		t.Errorf("NextVersion(1,2,3) = %v, want 4", got)
	}
	// Gaps from deleted versions do not cause reuse.
	if got := NextVersion([]Version{1, 5}); got != 6 {
		t.Errorf("NextVersion(1,5) = %v, want 6", got)
	}
}

func TestSessionKeyRoundTrip(t *testing.T) {
	group, err := ParseGroup("blog")
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	document, err := ParseDocumentID("release-notes")
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	key, err := NewSessionKey(group, document)
	if err != nil {
		t.Fatalf("NewSessionKey: %v", err)
	}

	want := "edit:blog/slug/release-notes"
	if key.String() != want {
		t.Errorf("String = %q, want %q", key.String(), want)
	}

	parsed, err := ParseSessionKey(key.String())
	if err != nil {
		t.Fatalf("ParseSessionKey: %v", err)
	}
	if parsed != key {
		t.Errorf("round trip: %v != %v", parsed, key)
	}
}

func TestSessionKeyTimestampMode(t *testing.T) {
	group, _ := ParseGroup("blog")
	document, err := ParseDocumentID("2026/08/30/142501")
	if err != nil {
		t.Fatalf("ParseDocumentID: %v", err)
	}
	key, err := NewSessionKey(group, document)
	if err != nil {
		t.Fatalf("NewSessionKey: %v", err)
	}
	want := "edit:blog/timestamp/2026/08/30/142501"
	if key.String() != want {
		t.Errorf("String = %q, want %q", key.String(), want)
	}
	parsed, err := ParseSessionKey(key.String())
	if err != nil {
		t.Fatalf("ParseSessionKey: %v", err)
	}
	if parsed != key {
		t.Errorf("round trip: %v != %v", parsed, key)
	}
}

func TestParseSessionKeyModeMismatch(t *testing.T) {
	if _, err := ParseSessionKey("edit:blog/timestamp/release-notes"); err == nil {
		t.Error("mode mismatch should fail")
	}
}

func TestConnectionIDUnique(t *testing.T) {
	a := NewConnectionID()
	b := NewConnectionID()
	if a == b {
		t.Error("two generated connection IDs should differ")
	}
	parsed, err := ParseConnectionID(a.String())
	if err != nil {
		t.Fatalf("ParseConnectionID: %v", err)
	}
	if parsed != a {
		t.Errorf("round trip: %v != %v", parsed, a)
	}
}
