package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"modbase/internal/catalog"
	"modbase/internal/fileutil"
	"modbase/internal/logging"
	"modbase/internal/releasenotes"
	"modbase/internal/services"
	"modbase/internal/snapshot"
	"modbase/internal/version"
)

// ParseRequest names the directories of a parse run.
type ParseRequest struct {
	InputDir  string
	OutputDir string
	NotesDir  string
}

// ParseResult describes a completed parse.
type ParseResult struct {
	Version      version.Version
	VersionName  string
	Catalog      *catalog.Catalog
	Notes        []releasenotes.Result
	Selected     releasenotes.Selection
	MetadataPath string
	FeedFetches  int
}

// Summary is a one-line description for the ledger.
func (p ParseResult) Summary() string {
	found := 0
	for _, n := range p.Notes {
		if n.Found() {
			found++
		}
	}
	depots := 0
	if p.Catalog != nil {
		depots = len(p.Catalog.Depots)
	}
	s := fmt.Sprintf("%d depots, %d/%d release notes", depots, found, len(p.Notes))
	if p.Selected.Fallback {
		s += fmt.Sprintf(", notes borrowed from %s", p.Selected.Version)
	}
	return s
}

// Parse reads an installation and writes its snapshot metadata document,
// fetching any missing release notes along the way.
func (r *Runner) Parse(ctx context.Context, req ParseRequest) (result ParseResult, err error) {
	ctx, runID := runContext(ctx, "parse")
	release, err := acquireLock(r.cfg.LockPath())
	if err != nil {
		return result, err
	}
	defer func() { _ = release() }()

	rec := r.startRecord(ctx, runID, "parse", "")
	defer func() { rec.finish(result.Summary(), err, r) }()

	if !fileutil.IsDir(req.InputDir) {
		return result, services.Wrap(services.ErrPrecondition, "pipeline", "parse",
			fmt.Sprintf("input directory not found: %s", req.InputDir), nil)
	}

	settings, err := snapshot.ReadLauncherSettings(filepath.Join(req.InputDir, r.cfg.Product.LauncherSettings))
	if err != nil {
		return result, err
	}
	v, err := version.Parse(settings.RawVersion)
	if err != nil {
		return result, err
	}
	result.Version = v
	result.VersionName = settings.Nickname()
	ctx = services.WithVersion(ctx, v.String())
	rec.setVersion(ctx, v.String())

	logger := r.componentLogger(ctx, "pipeline")
	logger.Info("parsing installation",
		logging.String("input", req.InputDir),
		logging.String("version_name", result.VersionName),
	)

	builder, err := catalog.NewBuilder(r.schema, r.remote, r.cfg.Product.AppID, r.cfg.Product.NamePrefix,
		catalog.WithPacer(r.newPacer()),
		catalog.WithLogger(logging.WithContext(ctx, r.logger)),
	)
	if err != nil {
		return result, err
	}
	cat, err := builder.Build(ctx, filepath.Join(req.InputDir, r.cfg.Product.ManifestDir))
	if err != nil {
		return result, err
	}
	result.Catalog = cat

	feed := releasenotes.NewFeed(r.remote, r.cfg.Product.AppID, r.cfg.Store.PageSize, r.cfg.Store.MaxPages, r.newPacer())
	appID := r.cfg.Product.AppID
	ensurer, err := releasenotes.NewEnsurer(req.NotesDir, feed,
		func(id string) string { return r.remote.NewsURL(appID, id) },
		releasenotes.WithEnsurerLogger(logging.WithContext(ctx, r.logger)),
	)
	if err != nil {
		return result, services.Wrap(services.ErrPrecondition, "pipeline", "parse", "", err)
	}
	notes, err := ensurer.EnsureAll(ctx, version.RequiredChain(v))
	result.Notes = notes
	result.FeedFetches = feed.Fetches()
	if err != nil {
		return result, err
	}

	selected, ok := releasenotes.Select(v, notes)
	if !ok {
		return result, services.Wrap(services.ErrNotFound, "pipeline", "parse",
			fmt.Sprintf("no release note available for %s", v), nil)
	}
	result.Selected = selected
	if selected.Fallback {
		logging.WarnWithContext(logger, "using an ancestor's release notes", "release_note_fallback",
			logging.String("selected_version", selected.Version.String()),
			logging.String("file", selected.File),
			logging.String(logging.FieldErrorHint, "rerun parse once the announcement for this version is published"),
			logging.String(logging.FieldImpact, "snapshot metadata points at a parent version's notes"),
		)
	}

	notePath := filepath.Join(req.NotesDir, selected.File)
	note, err := releasenotes.ReadNote(notePath, v.String(), r.now())
	if err != nil {
		return result, services.Wrap(services.ErrPrecondition, "pipeline", "parse", "", err)
	}

	meta := snapshot.Assemble(snapshot.Input{
		Version:     v,
		VersionName: result.VersionName,
		Catalog:     cat,
		Note:        note,
		NoteFile:    relativeSlash(req.OutputDir, notePath),
		Now:         r.now(),
	})
	writer, err := snapshot.NewWriter()
	if err != nil {
		return result, err
	}
	result.MetadataPath = filepath.Join(req.OutputDir, r.cfg.Product.MetadataFile)
	if err := writer.Write(result.MetadataPath, meta); err != nil {
		return result, err
	}

	logger.Info("snapshot metadata written",
		logging.String("file", result.MetadataPath),
		logging.Int("depots", len(cat.Depots)),
		logging.Int("named_depots", cat.Named()),
		logging.Int("feed_fetches", result.FeedFetches),
	)
	return result, nil
}

// relativeSlash returns target relative to base with forward slashes, or
// target itself when no relative path exists.
func relativeSlash(base, target string) string {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return filepath.ToSlash(target)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return filepath.ToSlash(absTarget)
	}
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}
