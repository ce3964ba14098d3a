package releasenotes

import (
	"strings"
	"testing"

	"modbase/internal/version"
)

func mustMatcher(t *testing.T, v string) *Matcher {
	t.Helper()
	m, err := NewMatcher(version.MustParse(v))
	if err != nil {
		t.Fatalf("NewMatcher(%s): %v", v, err)
	}
	return m
}

func TestMatcherRejectsSubstringCollisions(t *testing.T) {
	m := mustMatcher(t, "1.12.1")
	for _, title := range []string{"Update 1.12.1.3", "Update 1.12.12", "Update 11.12.1", "Update v1.12.1x"} {
		if m.Matches(Announcement{Title: title, Body: "notes"}) {
			t.Fatalf("1.12.1 should not match %q", title)
		}
	}
	for _, title := range []string{"Update 1.12.1", "Update 1.12.1 - Hotfix", "Hotfix 1.12.1!"} {
		if !m.Matches(Announcement{Title: title, Body: "notes"}) {
			t.Fatalf("1.12.1 should match %q", title)
		}
	}
}

func TestMatcherBaselineExcludesHotfix(t *testing.T) {
	m := mustMatcher(t, "1.11.0")
	if !m.Matches(Announcement{Title: "Update 1.11.0 Available Now", Body: "New features"}) {
		t.Fatal("expected match on release title")
	}
	if m.Matches(Announcement{Title: "Update 1.11.0 Hotfix", Body: "fixes"}) {
		t.Fatal("baseline must not match a hotfix title")
	}
	if m.Matches(Announcement{Title: "Update 1.11.0", Body: "This hotfix addresses a crash"}) {
		t.Fatal("baseline must not match a hotfix body")
	}
}

func TestMatcherRejectsPreviews(t *testing.T) {
	m := mustMatcher(t, "1.13.0")
	for _, title := range []string{"Dev Diary #150 - 1.13.0", "Upcoming 1.13.0 changes", "Preview of 1.13.0", "Developer Diary: 1.13.0", "Dev Update 1.13.0"} {
		if m.Matches(Announcement{Title: title, Body: "body"}) {
			t.Fatalf("preview %q should be rejected", title)
		}
	}
}

func TestMatcherRequiresTitleAndBody(t *testing.T) {
	m := mustMatcher(t, "1.9.2")
	if m.Matches(Announcement{Title: "Update 1.9.2", Body: ""}) {
		t.Fatal("empty body should not match")
	}
	if m.Matches(Announcement{Title: "", Body: "Update 1.9.2"}) {
		t.Fatal("empty title should not match")
	}
}

func TestMatcherBodyFallback(t *testing.T) {
	m := mustMatcher(t, "1.9.2")
	early := Announcement{Title: "Legacy of Persia - Available Now!", Body: "Patch 1.9.2 brings a new region."}
	if !m.Matches(early) {
		t.Fatal("expected body match near the start")
	}

	late := Announcement{Title: "Legacy of Persia - Out Now", Body: strings.Repeat("x", 600) + " patch 1.9.2"}
	if m.Matches(late) {
		t.Fatal("version beyond the first 500 characters must not count")
	}

	marketing := Announcement{Title: "Big sale this weekend", Body: "Patch 1.9.2 is live"}
	if m.Matches(marketing) {
		t.Fatal("body match requires a release-style title")
	}

	m0 := mustMatcher(t, "1.9.0")
	hot := Announcement{Title: "Chapter III Released", Body: "1.9.0 is here. A hotfix follows soon."}
	if m0.Matches(hot) {
		t.Fatal("baseline body fallback must exclude hotfix mentions")
	}
}

func TestMatcherVariantOrderAcrossPage(t *testing.T) {
	m := mustMatcher(t, "1.10.0")
	if got := strings.Join(m.Variants(), ","); got != "1.10.0,1.10" {
		t.Fatalf("variants = %s", got)
	}
	page := []Announcement{
		{ID: "short", Title: "Update 1.10 'Lance'", Body: "notes"},
		{ID: "full", Title: "Update 1.10.0", Body: "notes"},
	}
	a, variant, ok := m.FindInPage(page)
	if !ok || a.ID != "full" || variant != "1.10.0" {
		t.Fatalf("FindInPage = %+v %q %v", a, variant, ok)
	}

	a, variant, ok = m.FindInPage(page[:1])
	if !ok || a.ID != "short" || variant != "1.10" {
		t.Fatalf("short variant: %+v %q %v", a, variant, ok)
	}

	if m.Matches(Announcement{Title: "Update 1.10.1", Body: "notes"}) {
		t.Fatal("1.10 variant must not match 1.10.1")
	}
}
