package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directories for local state and logs.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Product describes the mirrored game and the layout of its installation.
type Product struct {
	AppID            string `toml:"app_id"`
	NamePrefix       string `toml:"name_prefix"`
	MetadataFile     string `toml:"metadata_file"`
	ManifestDir      string `toml:"manifest_dir"`
	LauncherSettings string `toml:"launcher_settings"`
}

// Store contains configuration for the remote catalog and announcement feed.
type Store struct {
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	UserAgent      string `toml:"user_agent"`
	RequestDelayMS int    `toml:"request_delay_ms"`
	PageSize       int    `toml:"page_size"`
	MaxPages       int    `toml:"max_pages"`
	CheckPageSize  int    `toml:"check_page_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Download contains configuration for the external download agent.
type Download struct {
	Binary         string `toml:"binary"`
	Username       string `toml:"username"`
	TOTPSecret     string `toml:"totp_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Extract contains the file classification lists used by the extraction pass.
type Extract struct {
	SkipExtensions        []string `toml:"skip_extensions"`
	PlaceholderExtensions []string `toml:"placeholder_extensions"`
	IgnoreGlobs           []string `toml:"ignore_globs"`
	PlaceholderNote       string   `toml:"placeholder_note"`
}

// History controls the local run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for modbase.
//
// Configuration sections by subsystem:
//   - Paths: state (lock, history database) and log directories
//   - Product: store app id, add-on name prefix, installation layout
//   - Store: remote catalog/feed endpoint, paging, and pacing
//   - Download: external download agent and credentials
//   - Extract: skip/placeholder extension lists and ignore globs
//   - History: run ledger toggle
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Product  Product  `toml:"product"`
	Store    Store    `toml:"store"`
	Download Download `toml:"download"`
	Extract  Extract  `toml:"extract"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/modbase/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/modbase/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("modbase.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "modbase.lock")
}

// HistoryPath returns the run ledger database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// RequestDelay returns the pacing delay between successive remote requests of
// the same kind.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.Store.RequestDelayMS) * time.Millisecond
}

// StoreTimeout returns the per-request timeout for the remote store.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// DownloadTimeout returns the download agent timeout; zero means none.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "modbase")
	}
	return "~/.local/state/modbase"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
