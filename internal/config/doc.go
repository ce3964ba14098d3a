// Package config loads, normalizes, and validates modbase configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STEAM_USERNAME and STEAM_TOTP_SECRET. The Config type centralizes every knob
// the CLI needs: the store endpoint and pacing, installation layout, the
// extraction extension lists, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, normalized extension lists, and clear validation errors.
package config
