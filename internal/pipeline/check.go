package pipeline

import (
	"context"
	"strings"

	"modbase/internal/logging"
	"modbase/internal/releasenotes"
	"modbase/internal/version"
)

// CheckResult is the newest published patch and, when an expected version
// was given, whether it matches.
type CheckResult struct {
	Latest       version.Version
	Announcement releasenotes.Announcement
	Expected     string
	Matches      bool
}

// Check looks up the newest patch announced on the feed. When expected is
// non-empty it is compared with the latest version string.
func (r *Runner) Check(ctx context.Context, expected string) (CheckResult, error) {
	ctx, _ = runContext(ctx, "check")
	logger := r.componentLogger(ctx, "pipeline")

	events, err := r.remote.EventsPage(ctx, r.cfg.Product.AppID, 0, r.cfg.Store.CheckPageSize)
	if err != nil {
		return CheckResult{}, err
	}
	page := make([]releasenotes.Announcement, 0, len(events))
	for _, e := range events {
		page = append(page, releasenotes.FromEvent(e))
	}
	latest, ann, err := releasenotes.LatestRelease(page)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{Latest: latest, Announcement: ann, Expected: strings.TrimSpace(expected)}
	if result.Expected != "" {
		result.Matches = result.Expected == latest.String()
	}
	logger.Debug("latest release",
		logging.String("latest", latest.String()),
		logging.String("title", ann.Title),
		logging.String("expected", result.Expected),
		logging.Bool("matches", result.Matches),
	)
	return result, nil
}
