package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modbase/internal/testsupport"
)

func TestCheckPrintsLatest(t *testing.T) {
	env := setupCLITestEnv(t, fakeStore(
		storeEvent{GID: "3", Title: "Update 1.12.4 Available Now"},
		storeEvent{GID: "2", Title: "Hotfix 1.12.4.1"},
	))
	out, stderr, code := env.run(t, "check")
	if code != 0 {
		t.Fatalf("check exited %d: %s", code, stderr)
	}
	if strings.TrimSpace(out) != "1.12.4.1" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestCheckComparesSilently(t *testing.T) {
	env := setupCLITestEnv(t, fakeStore(storeEvent{GID: "2", Title: "Update 1.12.4"}))

	if _, _, code := env.run(t, "check", "1.12.4"); code != 0 {
		t.Fatalf("matching version should exit 0, got %d", code)
	}
	out, stderr, code := env.run(t, "check", "1.12.3")
	if code != 1 {
		t.Fatalf("older version should exit 1, got %d", code)
	}
	if out != "" || strings.Contains(stderr, "Error:") {
		t.Fatalf("mismatch should be silent: stdout=%q stderr=%q", out, stderr)
	}
}

func TestParseAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, fakeStore(
		storeEvent{GID: "11", Title: "Update 1.12.1", Body: "[h2]Bugfixes[/h2][list][*]Fixed a crash[/list]"},
		storeEvent{GID: "10", Title: "Update 1.12.0", Body: "Launch"},
	))
	input := filepath.Join(env.baseDir, "install")
	output := filepath.Join(env.baseDir, "repo")
	notes := filepath.Join(output, "release-notes")
	writeInstallation(t, env.cfg, input, "1.12.1")

	out, stderr, code := env.run(t, "parse", input, output, notes)
	if code != 0 {
		t.Fatalf("parse exited %d: %s", code, stderr)
	}
	requireContains(t, out, "1.12.1 (Scythe)")
	requireContains(t, out, "2 (1 named)")

	var doc struct {
		Version      string `json:"version"`
		ReleaseNotes struct {
			File string `json:"file"`
		} `json:"release_notes"`
		Depots map[string]struct {
			Name string `json:"name"`
		} `json:"depots"`
	}
	data := testsupport.ReadText(t, filepath.Join(output, env.cfg.Product.MetadataFile))
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if doc.ReleaseNotes.File != "release-notes/1_12_1_0_2023-11-14.md" {
		t.Fatalf("file = %q", doc.ReleaseNotes.File)
	}
	if doc.Depots["2000"].Name != "Tours & Tournaments" {
		t.Fatalf("depots = %+v", doc.Depots)
	}
	note := testsupport.ReadText(t, filepath.Join(notes, "1_12_1_0_2023-11-14.md"))
	requireContains(t, note, "Fixed a crash")

	out, stderr, code = env.run(t, "history")
	if code != 0 {
		t.Fatalf("history exited %d: %s", code, stderr)
	}
	requireContains(t, out, "parse")
	requireContains(t, out, "succeeded")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithHistory(false))
	input := filepath.Join(env.baseDir, "install")
	writeInstallation(t, env.cfg, input, "1.12.1")

	if _, stderr, code := env.run(t, "extract", input, filepath.Join(env.baseDir, "game")); code != 0 {
		t.Fatalf("extract exited %d: %s", code, stderr)
	}
	out, _, code := env.run(t, "history")
	if code != 0 {
		t.Fatalf("history exited %d", code)
	}
	requireContains(t, out, "disabled")
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("ledger should not be created, stat err=%v", err)
	}
}

func TestExtractWithOverride(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	input := filepath.Join(env.baseDir, "install")
	output := filepath.Join(env.baseDir, "game")
	writeInstallation(t, env.cfg, input, "1.12.1")

	out, stderr, code := env.run(t, "extract", input, output, ".txt")
	if code != 0 {
		t.Fatalf("extract exited %d: %s", code, stderr)
	}
	requireContains(t, out, "Placeholders")

	placeholder := testsupport.ReadText(t, filepath.Join(output, "game", "events", "a.txt"))
	requireContains(t, placeholder, `"sha256"`)
	if got := testsupport.ReadText(t, filepath.Join(output, "game", "gfx", "b.dds")); strings.Contains(got, "sha256") {
		t.Fatal("override should copy .dds verbatim")
	}
	if _, err := os.Stat(filepath.Join(output, "binaries", "ck3.exe")); !os.IsNotExist(err) {
		t.Fatal("engine binaries must be skipped")
	}
}

func TestExtractIntoNonEmptyOutputFails(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	input := filepath.Join(env.baseDir, "install")
	output := filepath.Join(env.baseDir, "game")
	writeInstallation(t, env.cfg, input, "1.12.1")
	testsupport.WriteText(t, filepath.Join(output, "stale.txt"), "x")

	_, stderr, code := env.run(t, "extract", input, output)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	requireContains(t, stderr, "output directory must be empty")
	requireContains(t, stderr, "Hint:")
}

func TestDownloadRejectsBadVersion(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithStubbedBinaries())
	_, stderr, code := env.run(t, "download", "one.two", filepath.Join(env.baseDir, "dl"))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	requireContains(t, stderr, "validation")
}

func TestDownloadRunsAgent(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithStubbedBinaries())
	dir := filepath.Join(env.baseDir, "dl")
	out, stderr, code := env.run(t, "download", "1.12.4", dir)
	if code != 0 {
		t.Fatalf("download exited %d: %s", code, stderr)
	}
	requireContains(t, out, "Downloaded 1.12.4")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("output directory should exist: %v", err)
	}
}

func TestDoctorOffline(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithStubbedBinaries())
	out, stderr, code := env.run(t, "doctor", "--offline")
	if code != 0 {
		t.Fatalf("doctor exited %d: %s\n%s", code, stderr, out)
	}
	requireContains(t, out, "DepotDownloader")
	requireContains(t, out, "State directory")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, stderr, code := env.run(t, "config", "validate")
	if code != 0 {
		t.Fatalf("config validate exited %d: %s", code, stderr)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, stderr, code = env.run(t, "config", "init", "--path", target)
	if code != 0 {
		t.Fatalf("config init exited %d: %s", code, stderr)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, stderr, code = env.run(t, "config", "init", "--path", target)
	if code != 1 {
		t.Fatalf("second init without --overwrite should fail, got %d", code)
	}
	requireContains(t, stderr, "already exists")
}

func TestDebugPrintsErrorChain(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	_, stderr, code := env.run(t, "--debug", "parse", filepath.Join(env.baseDir, "missing"), env.baseDir, env.baseDir)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	requireContains(t, stderr, "input directory not found")
	if strings.Count(stderr, "precondition failed") < 2 {
		t.Fatalf("expected the wrapped chain under --debug:\n%s", stderr)
	}
}
