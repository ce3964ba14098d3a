package releasenotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"modbase/internal/fileutil"
	"modbase/internal/logging"
	"modbase/internal/services"
	"modbase/internal/version"
)

// Status describes how a version's note was satisfied.
type Status int

const (
	StatusMissing Status = iota
	StatusExisting
	StatusFetched
)

func (s Status) String() string {
	switch s {
	case StatusExisting:
		return "existing"
	case StatusFetched:
		return "fetched"
	default:
		return "missing"
	}
}

// Result is the outcome for one required version.
type Result struct {
	Version version.Version
	File    string
	Status  Status
	// Scanned is the number of announcements examined when searching.
	Scanned int
}

// Found reports whether a note file exists for the version.
func (r Result) Found() bool { return r.Status != StatusMissing }

// LinkFunc maps an announcement id to its public URL.
type LinkFunc func(id string) string

// Ensurer makes sure release notes exist on disk.
type Ensurer struct {
	dir       string
	feed      *Feed
	link      LinkFunc
	converter *Converter
	logger    *slog.Logger
}

// EnsurerOption configures an Ensurer.
type EnsurerOption func(*Ensurer)

// WithEnsurerLogger sets the logger.
func WithEnsurerLogger(logger *slog.Logger) EnsurerOption {
	return func(e *Ensurer) { e.logger = logging.NewComponentLogger(logger, "releasenotes") }
}

// NewEnsurer writes notes into dir using feed for lookups.
func NewEnsurer(dir string, feed *Feed, link LinkFunc, opts ...EnsurerOption) (*Ensurer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("release notes directory required")
	}
	if feed == nil {
		return nil, errors.New("announcement feed required")
	}
	if link == nil {
		link = func(id string) string { return id }
	}
	e := &Ensurer{
		dir:       dir,
		feed:      feed,
		link:      link,
		converter: NewConverter(),
		logger:    logging.NewComponentLogger(nil, "releasenotes"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dir returns the release notes directory.
func (e *Ensurer) Dir() string { return e.dir }

// Ensure returns the note for v, searching the feed only when no file with
// v's slug exists. A version with no matching announcement yields
// StatusMissing and an error marked services.ErrNotFound.
func (e *Ensurer) Ensure(ctx context.Context, v version.Version) (Result, error) {
	result := Result{Version: v}
	if existing, ok, err := FindExisting(e.dir, v); err != nil {
		return result, services.Wrap(services.ErrPrecondition, "releasenotes", "scan", e.dir, err)
	} else if ok {
		e.logger.Info("release note already present", logging.String(logging.FieldVersion, v.String()), logging.String("file", existing))
		result.File = existing
		result.Status = StatusExisting
		return result, nil
	}

	e.logger.Info("searching announcements", logging.String(logging.FieldVersion, v.String()))
	matcher, err := NewMatcher(v)
	if err != nil {
		return result, err
	}

	var (
		match   Announcement
		found   bool
		feedErr error
	)
	for page, err := range e.feed.Pages(ctx) {
		if err != nil {
			feedErr = err
			break
		}
		if a, variant, ok := matcher.FindInPage(page); ok {
			match, found = a, true
			e.logger.Debug("announcement matched",
				logging.String(logging.FieldVersion, v.String()),
				logging.String("variant", variant),
				logging.String("title", a.Title),
			)
			break
		}
		result.Scanned += len(page)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if !found {
		msg := fmt.Sprintf("no announcement for %s after checking %d announcements", v, result.Scanned)
		if feedErr != nil {
			return result, services.Wrap(services.ErrNotFound, "releasenotes", "search", msg, feedErr)
		}
		return result, services.Wrap(services.ErrNotFound, "releasenotes", "search", msg, nil)
	}

	file, err := e.write(v, match)
	if err != nil {
		return result, err
	}
	result.File = file
	result.Status = StatusFetched
	e.logger.Info("release note saved", logging.String(logging.FieldVersion, v.String()), logging.String("file", file))
	return result, nil
}

func (e *Ensurer) write(v version.Version, a Announcement) (string, error) {
	body, err := e.converter.Convert(a.Body)
	if err != nil {
		return "", services.Wrap(services.ErrFormat, "releasenotes", "convert", a.Title, err)
	}
	date := a.Date()
	note := Note{
		Title: CleanTitle(a.Title),
		Date:  date,
		URL:   e.link(a.ID),
		Body:  body,
	}
	name := FileName(v, date)
	if err := fileutil.WriteFileAtomic(filepath.Join(e.dir, name), Render(note), 0o644); err != nil {
		return "", services.Wrap(services.ErrPrecondition, "releasenotes", "write", name, err)
	}
	return name, nil
}

// EnsureAll processes chain oldest first. Versions without an announcement
// are logged and skipped; if none can be satisfied the error is marked
// services.ErrNotFound. Results are returned in processing order.
func (e *Ensurer) EnsureAll(ctx context.Context, chain []version.Version) ([]Result, error) {
	results := make([]Result, 0, len(chain))
	satisfied := 0
	for _, v := range version.Reverse(chain) {
		res, err := e.Ensure(ctx, v)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				logging.WarnWithContext(e.logger, "release note not found; skipping version", "release_note_missing",
					logging.String(logging.FieldVersion, v.String()),
					logging.Int("scanned", res.Scanned),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, services.Hint(err)),
					logging.String(logging.FieldImpact, "this version has no release note file"),
				)
				results = append(results, res)
				continue
			}
			return results, err
		}
		satisfied++
		results = append(results, res)
	}
	if satisfied == 0 {
		target := "<none>"
		if len(chain) > 0 {
			target = chain[0].String()
		}
		return results, services.Wrap(services.ErrNotFound, "releasenotes", "ensure",
			fmt.Sprintf("no release notes found for %s or any parent version", target), nil)
	}
	return results, nil
}

// Selection is the note chosen to describe a snapshot.
type Selection struct {
	Result
	// Fallback is set when the target has no note of its own and an
	// ancestor's note stands in for it.
	Fallback bool
}

// Select picks target's own note when present, otherwise the newest
// ancestor that has one. Ancestors are ranked by numeric version order
// rather than by comparing version strings, so 1.10.10 outranks 1.10.9.
func Select(target version.Version, results []Result) (Selection, bool) {
	var best *Result
	for i := range results {
		r := &results[i]
		if !r.Found() {
			continue
		}
		if r.Version.Equal(target) {
			return Selection{Result: *r}, true
		}
		if best == nil || r.Version.Compare(best.Version) > 0 {
			best = r
		}
	}
	if best == nil {
		return Selection{}, false
	}
	return Selection{Result: *best, Fallback: true}, true
}
