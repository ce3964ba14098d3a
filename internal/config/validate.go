package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProduct(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProduct() error {
	if c.Product.AppID == "" {
		return errors.New("product.app_id must be set")
	}
	if _, err := strconv.ParseUint(c.Product.AppID, 10, 32); err != nil {
		return fmt.Errorf("product.app_id must be numeric, got %q", c.Product.AppID)
	}
	if strings.ContainsAny(c.Product.MetadataFile, `/\`) {
		return fmt.Errorf("product.metadata_file must be a bare file name, got %q", c.Product.MetadataFile)
	}
	if filepath.IsAbs(c.Product.LauncherSettings) {
		return fmt.Errorf("product.launcher_settings must be relative to the installation root, got %q", c.Product.LauncherSettings)
	}
	return nil
}

func (c *Config) validateStore() error {
	if !strings.HasPrefix(c.Store.BaseURL, "http://") && !strings.HasPrefix(c.Store.BaseURL, "https://") {
		return fmt.Errorf("store.base_url must be an http(s) URL, got %q", c.Store.BaseURL)
	}
	if c.Store.PageSize > 100 {
		return fmt.Errorf("store.page_size must be at most 100, got %d", c.Store.PageSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
