package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"modbase/internal/services"
)

var nicknamePattern = regexp.MustCompile(`\(([^)]+)\)`)

// LauncherSettings is the part of the game launcher's settings file that
// names the installed version.
type LauncherSettings struct {
	// RawVersion is the bare dotted version, e.g. "1.12.4".
	RawVersion string `json:"rawVersion"`
	// Version is the display form, e.g. "1.12.4 (Scythe)".
	Version string `json:"version"`
}

// Nickname returns the parenthesised release name in Version, if any.
func (s LauncherSettings) Nickname() string {
	m := nicknamePattern.FindStringSubmatch(s.Version)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ReadLauncherSettings parses the settings file at path. Comments and
// trailing commas are tolerated. A missing file is a precondition failure;
// unparsable content is a validation failure.
func ReadLauncherSettings(path string) (LauncherSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LauncherSettings{}, services.Wrap(services.ErrPrecondition, "snapshot", "launcher settings",
				fmt.Sprintf("%s not found; it ships with the downloaded game", path), nil)
		}
		return LauncherSettings{}, services.Wrap(services.ErrPrecondition, "snapshot", "launcher settings", path, err)
	}
	var settings LauncherSettings
	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return LauncherSettings{}, services.Wrap(services.ErrValidation, "snapshot", "launcher settings",
			fmt.Sprintf("parse %s", path), err)
	}
	settings.RawVersion = strings.TrimSpace(settings.RawVersion)
	return settings, nil
}
