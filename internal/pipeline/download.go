package pipeline

import (
	"context"
	"strings"

	"modbase/internal/logging"
	"modbase/internal/services"
	"modbase/internal/version"
)

// Download fetches the installation for versionText into dir using the
// download agent. The agent always fetches the current build; the version
// labels the run.
func (r *Runner) Download(ctx context.Context, versionText, dir string) (err error) {
	v, err := version.Parse(versionText)
	if err != nil {
		return err
	}
	if strings.TrimSpace(dir) == "" {
		return services.Wrap(services.ErrValidation, "pipeline", "download", "output directory required", nil)
	}
	ctx, runID := runContext(ctx, "download")
	ctx = services.WithVersion(ctx, v.String())

	rec := r.startRecord(ctx, runID, "download", v.String())
	defer func() { rec.finish(dir, err, r) }()

	logger := r.componentLogger(ctx, "pipeline")
	logger.Info("downloading installation", logging.String("dir", dir))
	return r.downloader.Download(ctx, r.cfg.Product.AppID, dir)
}
