package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProduct()
	c.normalizeStore()
	c.normalizeDownload()
	c.normalizeExtract()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProduct() {
	c.Product.AppID = strings.TrimSpace(c.Product.AppID)
	c.Product.NamePrefix = strings.TrimSpace(c.Product.NamePrefix)
	c.Product.MetadataFile = strings.TrimSpace(c.Product.MetadataFile)
	if c.Product.MetadataFile == "" {
		c.Product.MetadataFile = defaultMetadataFile
	}
	c.Product.ManifestDir = strings.Trim(strings.TrimSpace(c.Product.ManifestDir), "/")
	if c.Product.ManifestDir == "" {
		c.Product.ManifestDir = defaultManifestDir
	}
	c.Product.LauncherSettings = strings.TrimSpace(c.Product.LauncherSettings)
	if c.Product.LauncherSettings == "" {
		c.Product.LauncherSettings = defaultLauncherSettings
	}
}

func (c *Config) normalizeStore() {
	c.Store.BaseURL = strings.TrimRight(strings.TrimSpace(c.Store.BaseURL), "/")
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = defaultStoreBaseURL
	}
	c.Store.Language = strings.TrimSpace(c.Store.Language)
	if c.Store.Language == "" {
		c.Store.Language = defaultStoreLanguage
	}
	c.Store.UserAgent = strings.TrimSpace(c.Store.UserAgent)
	if c.Store.UserAgent == "" {
		c.Store.UserAgent = defaultStoreUserAgent
	}
	if c.Store.RequestDelayMS < 0 {
		c.Store.RequestDelayMS = 0
	}
	if c.Store.PageSize <= 0 {
		c.Store.PageSize = defaultPageSize
	}
	if c.Store.MaxPages <= 0 {
		c.Store.MaxPages = defaultMaxPages
	}
	if c.Store.CheckPageSize <= 0 {
		c.Store.CheckPageSize = defaultCheckPageSize
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = defaultStoreTimeoutSecond
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	c.Download.Username = strings.TrimSpace(c.Download.Username)
	if c.Download.Username == "" {
		if value, ok := os.LookupEnv("STEAM_USERNAME"); ok {
			c.Download.Username = strings.TrimSpace(value)
		}
	}
	c.Download.TOTPSecret = strings.TrimSpace(c.Download.TOTPSecret)
	if c.Download.TOTPSecret == "" {
		if value, ok := os.LookupEnv("STEAM_TOTP_SECRET"); ok {
			c.Download.TOTPSecret = strings.TrimSpace(value)
		}
	}
	if c.Download.TimeoutSeconds < 0 {
		c.Download.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeExtract() {
	if c.Extract.SkipExtensions == nil {
		c.Extract.SkipExtensions = append([]string(nil), DefaultSkipExtensions...)
	}
	c.Extract.SkipExtensions = NormalizeExtensions(c.Extract.SkipExtensions)
	if c.Extract.PlaceholderExtensions == nil {
		c.Extract.PlaceholderExtensions = append([]string(nil), DefaultPlaceholderExtensions...)
	}
	c.Extract.PlaceholderExtensions = NormalizeExtensions(c.Extract.PlaceholderExtensions)

	globs := make([]string, 0, len(c.Extract.IgnoreGlobs))
	for _, glob := range c.Extract.IgnoreGlobs {
		glob = strings.TrimSpace(glob)
		if glob == "" {
			continue
		}
		globs = append(globs, path.Clean(strings.ReplaceAll(glob, "\\", "/")))
	}
	c.Extract.IgnoreGlobs = globs

	c.Extract.PlaceholderNote = strings.TrimSpace(c.Extract.PlaceholderNote)
	if c.Extract.PlaceholderNote == "" {
		c.Extract.PlaceholderNote = defaultPlaceholderNote
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// NormalizeExtensions lowercases, dot-prefixes, and de-duplicates a list of
// file extensions, dropping blanks. Order is preserved.
func NormalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
