package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"modbase/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("STEAM_USERNAME", "modder")
	t.Setenv("STEAM_TOTP_SECRET", "c2VjcmV0")
	t.Setenv("XDG_STATE_HOME", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "modbase")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Download.Username != "modder" {
		t.Fatalf("expected username from env, got %q", cfg.Download.Username)
	}
	if cfg.Download.TOTPSecret != "c2VjcmV0" {
		t.Fatalf("expected totp secret from env, got %q", cfg.Download.TOTPSecret)
	}
	if cfg.Product.AppID != "1158310" {
		t.Fatalf("unexpected app id: %q", cfg.Product.AppID)
	}
	if cfg.Store.PageSize != 100 || cfg.Store.MaxPages != 20 {
		t.Fatalf("unexpected paging defaults: %d x %d", cfg.Store.PageSize, cfg.Store.MaxPages)
	}
	if cfg.RequestDelay().Milliseconds() != 200 {
		t.Fatalf("unexpected request delay: %v", cfg.RequestDelay())
	}
	if !slices.Contains(cfg.Extract.SkipExtensions, ".dll") {
		t.Fatalf("expected default skip list, got %v", cfg.Extract.SkipExtensions)
	}
	if !slices.Contains(cfg.Extract.PlaceholderExtensions, ".dds") {
		t.Fatalf("expected default placeholder list, got %v", cfg.Extract.PlaceholderExtensions)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "modbase.toml")

	type payload struct {
		Product struct {
			AppID      string `toml:"app_id"`
			NamePrefix string `toml:"name_prefix"`
		} `toml:"product"`
		Store struct {
			BaseURL  string `toml:"base_url"`
			MaxPages int    `toml:"max_pages"`
		} `toml:"store"`
		Extract struct {
			PlaceholderExtensions []string `toml:"placeholder_extensions"`
			IgnoreGlobs           []string `toml:"ignore_globs"`
		} `toml:"extract"`
	}
	custom := payload{}
	custom.Product.AppID = "394360"
	custom.Product.NamePrefix = "Hearts of Iron IV"
	custom.Store.BaseURL = "https://example.com/store/"
	custom.Store.MaxPages = 3
	custom.Extract.PlaceholderExtensions = []string{"DDS", ".wav", ".dds", " "}
	custom.Extract.IgnoreGlobs = []string{" crashes/** "}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Product.AppID != "394360" || cfg.Product.NamePrefix != "Hearts of Iron IV" {
		t.Fatalf("unexpected product: %+v", cfg.Product)
	}
	if cfg.Store.BaseURL != "https://example.com/store" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Store.BaseURL)
	}
	if cfg.Store.MaxPages != 3 {
		t.Fatalf("unexpected max pages: %d", cfg.Store.MaxPages)
	}
	want := []string{".dds", ".wav"}
	if !slices.Equal(cfg.Extract.PlaceholderExtensions, want) {
		t.Fatalf("unexpected placeholder extensions: got %v want %v", cfg.Extract.PlaceholderExtensions, want)
	}
	if !slices.Equal(cfg.Extract.IgnoreGlobs, []string{"crashes/**"}) {
		t.Fatalf("unexpected ignore globs: %v", cfg.Extract.IgnoreGlobs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"non-numeric app id": "[product]\napp_id = \"ck3\"\n",
		"bad base url":       "[store]\nbase_url = \"ftp://example.com\"\n",
		"bad log format":     "[logging]\nformat = \"xml\"\n",
		"nested metadata":    "[product]\nmetadata_file = \"meta/version.json\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "modbase.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := config.NormalizeExtensions([]string{"PNG", ".png", " .Wav ", "", "."})
	want := []string{".png", ".wav"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if !strings.HasSuffix(cfg.Paths.StateDir, filepath.Join(".local", "state", "modbase")) {
		t.Fatalf("unexpected state dir from sample: %q", cfg.Paths.StateDir)
	}
}
