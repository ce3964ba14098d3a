package releasenotes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"modbase/internal/version"
)

func TestFileNameAndFindExisting(t *testing.T) {
	dir := t.TempDir()
	v := version.MustParse("1.10.1")
	name := FileName(v, "2024-01-01")
	if name != "1_10_1_0_2024-01-01.md" {
		t.Fatalf("FileName = %s", name)
	}

	if _, ok, err := FindExisting(filepath.Join(dir, "missing"), v); err != nil || ok {
		t.Fatalf("missing dir: ok=%v err=%v", ok, err)
	}

	for _, f := range []string{"1_10_1_0_2023-12-31.md", "1_10_1_1_2024-02-02.md", "1_10_1_0.md", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, ok, err := FindExisting(dir, v)
	if err != nil || !ok || got != "1_10_1_0_2023-12-31.md" {
		t.Fatalf("FindExisting = %q %v %v", got, ok, err)
	}
	if _, ok, _ := FindExisting(dir, version.MustParse("1.10.2")); ok {
		t.Fatal("unexpected match for 1.10.2")
	}
	// 1.10.1.0 shares the slug of 1.10.1.
	if _, ok, _ := FindExisting(dir, version.MustParse("1.10.1.0")); !ok {
		t.Fatal("expected 1.10.1.0 to share the 1.10.1 note")
	}
}

func TestCleanTitle(t *testing.T) {
	tests := map[string]string{
		"Update 1.12.1":                   "1.12.1",
		"Hotfix 1.12.1.1":                 "1.12.1.1",
		"Rollback for Update 1.12.2":      "1.12.2",
		"Update 1.11.0 'Peacock' Now Out": "1.11.0 'Peacock' Now Out",
		"Roads to Power Available Now":    "Roads to Power Available Now",
	}
	for in, want := range tests {
		if got := CleanTitle(in); got != want {
			t.Fatalf("CleanTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	n := Note{
		Title: "1.12.1",
		Date:  "2024-03-05",
		URL:   "https://store.steampowered.com/news/app/1158310/view/123",
		Body:  "# Fixes\n\n- one\n- two",
	}
	doc := string(Render(n))
	want := "# 1.12.1\n\n**Release Date:** 2024-03-05\n**Official Announcement:** https://store.steampowered.com/news/app/1158310/view/123\n\n---\n\n# Fixes\n\n- one\n- two\n"
	if doc != want {
		t.Fatalf("Render =\n%q\nwant\n%q", doc, want)
	}
	got := ParseNote([]byte(doc))
	if got.Title != n.Title || got.Date != n.Date || got.URL != n.URL {
		t.Fatalf("ParseNote = %+v", got)
	}
}

func TestReadNoteFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1_0_0_0_2020-01-01.md")
	if err := os.WriteFile(path, []byte("no header here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	n, err := ReadNote(path, "1.0.0", now)
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "1.0.0" || n.Date != "2026-10-15" || n.URL != "" {
		t.Fatalf("ReadNote = %+v", n)
	}
	if _, err := ReadNote(path+".missing", "x", now); err == nil {
		t.Fatal("expected error for missing file")
	}
}
