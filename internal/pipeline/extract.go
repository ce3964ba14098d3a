package pipeline

import (
	"context"
	"fmt"

	"modbase/internal/extract"
	"modbase/internal/logging"
)

// ExtractRequest names the directories of an extract run. A non-nil
// Placeholder list replaces the configured placeholder extensions.
type ExtractRequest struct {
	InputDir    string
	OutputDir   string
	Placeholder []string
}

// Extract mirrors an installation into a moddable reference tree.
func (r *Runner) Extract(ctx context.Context, req ExtractRequest) (stats extract.Stats, err error) {
	ctx, runID := runContext(ctx, "extract")
	release, err := acquireLock(r.cfg.LockPath())
	if err != nil {
		return stats, err
	}
	defer func() { _ = release() }()

	rec := r.startRecord(ctx, runID, "extract", "")
	defer func() {
		rec.finish(fmt.Sprintf("%d copied, %d placeholders, %d skipped", stats.Copied, stats.Placeholders, stats.Skipped), err, r)
	}()

	extractor, err := extract.NewFromConfig(r.cfg, req.Placeholder,
		extract.WithLogger(logging.WithContext(ctx, r.logger)),
	)
	if err != nil {
		return stats, err
	}
	return extractor.Run(ctx, req.InputDir, req.OutputDir)
}
