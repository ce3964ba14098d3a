package releasenotes

import (
	"fmt"
	"regexp"
	"strings"

	"modbase/internal/services"
	"modbase/internal/version"
)

var (
	patchTitle   = regexp.MustCompile(`^(Update|Hotfix|Rollback for Update) [0-9]+\.[0-9]+`)
	titleVersion = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+(?:\.[0-9]+)?)`)
)

// LatestRelease finds the newest shipped patch in page, which must be in
// feed order (newest first). Launch posts ("... Available Now") are passed
// over in favour of the patch announcement itself.
func LatestRelease(page []Announcement) (version.Version, Announcement, error) {
	for _, a := range page {
		if !patchTitle.MatchString(a.Title) || strings.Contains(a.Title, "Available") {
			continue
		}
		m := titleVersion.FindStringSubmatch(a.Title)
		if m == nil {
			return version.Version{}, a, services.Wrap(services.ErrValidation, "releasenotes", "latest",
				fmt.Sprintf("could not parse a version from %q", a.Title), nil)
		}
		v, err := version.Parse(m[1])
		if err != nil {
			return version.Version{}, a, err
		}
		return v, a, nil
	}
	return version.Version{}, Announcement{}, services.Wrap(services.ErrNotFound, "releasenotes", "latest",
		fmt.Sprintf("no patch announcement among the latest %d", len(page)), nil)
}
