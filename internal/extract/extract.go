package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"modbase/internal/config"
	"modbase/internal/fileutil"
	"modbase/internal/logging"
	"modbase/internal/services"
)

// PlaceholderRecord is written in place of a binary asset.
type PlaceholderRecord struct {
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
	Note   string `json:"note"`
}

// Stats summarises one extraction.
type Stats struct {
	Copied       int
	Placeholders int
	Skipped      int
	// CopiedBytes counts verbatim copies; OmittedBytes counts the content
	// of placeholder and skipped files.
	CopiedBytes  int64
	OmittedBytes int64
}

// Extractor walks an installation root and writes the mirrored tree.
type Extractor struct {
	classifier *Classifier
	note       string
	reserved   string
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the extractor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReservedDir names a directory skipped at any depth. Defaults to the
// download agent's metadata directory.
func WithReservedDir(name string) Option {
	return func(e *Extractor) { e.reserved = name }
}

// New returns an Extractor using classifier and the placeholder note.
func New(classifier *Classifier, note string, opts ...Option) *Extractor {
	e := &Extractor{
		classifier: classifier,
		note:       note,
		reserved:   ".DepotDownloader",
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "extract")
	return e
}

// NewFromConfig builds an extractor from the [extract] section. A non-nil
// placeholderOverride replaces the configured placeholder list.
func NewFromConfig(cfg *config.Config, placeholderOverride []string, opts ...Option) (*Extractor, error) {
	placeholder := cfg.Extract.PlaceholderExtensions
	if placeholderOverride != nil {
		placeholder = placeholderOverride
	}
	classifier, err := NewClassifier(cfg.Extract.SkipExtensions, placeholder, cfg.Extract.IgnoreGlobs)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "extract", "classifier", "", err)
	}
	opts = append([]Option{WithReservedDir(cfg.Product.ManifestDir)}, opts...)
	return New(classifier, cfg.Extract.PlaceholderNote, opts...), nil
}

// Run mirrors inputDir into outputDir. The output directory must be absent
// or empty.
func (e *Extractor) Run(ctx context.Context, inputDir, outputDir string) (Stats, error) {
	var stats Stats
	if !fileutil.IsDir(inputDir) {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "input",
			fmt.Sprintf("input directory not found: %s", inputDir), nil)
	}
	empty, err := fileutil.IsEmptyDir(outputDir)
	if err != nil {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "output", outputDir, err)
	}
	if !empty {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "output",
			fmt.Sprintf("output directory must be empty: %s (remove it first)", outputDir), nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "output", outputDir, err)
	}

	root, err := filepath.Abs(inputDir)
	if err != nil {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "input", inputDir, err)
	}
	target, err := filepath.Abs(outputDir)
	if err != nil {
		return stats, services.Wrap(services.ErrPrecondition, "extract", "output", outputDir, err)
	}

	e.logger.Info("extracting",
		logging.String("input", inputDir),
		logging.String("output", outputDir),
	)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == target {
				return filepath.SkipDir
			}
			if path != root && d.Name() == e.reserved {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			e.logger.Debug("skipping non-regular entry", logging.String("path", path))
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return e.handle(&stats, path, filepath.Join(target, rel), rel, info)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stats, err
		}
		return stats, services.Wrap(services.ErrPrecondition, "extract", "walk", "", err)
	}

	e.logger.Info("extraction complete",
		logging.Int("copied", stats.Copied),
		logging.Int("placeholders", stats.Placeholders),
		logging.Int("skipped", stats.Skipped),
		logging.Int64("copied_bytes", stats.CopiedBytes),
		logging.Int64("omitted_bytes", stats.OmittedBytes),
	)
	return stats, nil
}

func (e *Extractor) handle(stats *Stats, src, dst, rel string, info fs.FileInfo) error {
	switch e.classifier.Classify(rel) {
	case Skip:
		stats.Skipped++
		stats.OmittedBytes += info.Size()
		return nil
	case Placeholder:
		digest, err := fileutil.HashFile(src)
		if err != nil {
			return err
		}
		data, err := MarshalPlaceholder(PlaceholderRecord{Size: digest.Size, SHA256: digest.SHA256, Note: e.note})
		if err != nil {
			return err
		}
		if err := fileutil.WriteFileAtomic(dst, data, 0o644); err != nil {
			return err
		}
		stats.Placeholders++
		stats.OmittedBytes += digest.Size
		return nil
	default:
		n, err := fileutil.CopyFileMode(src, dst, info.Mode().Perm())
		if err != nil {
			return err
		}
		stats.Copied++
		stats.CopiedBytes += n
		return nil
	}
}

// MarshalPlaceholder renders rec as indented JSON with a trailing newline.
func MarshalPlaceholder(rec PlaceholderRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
