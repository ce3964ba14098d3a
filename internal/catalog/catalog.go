// Package catalog builds the per-depot record set of an installation from its
// manifest directory and the store's add-on list.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"modbase/internal/logging"
	"modbase/internal/manifest"
	"modbase/internal/services"
	"modbase/internal/services/steam"
)

var manifestName = regexp.MustCompile(`^(\d+)_(\d+)\.manifest$`)

// Store is the remote lookup the builder needs.
type Store interface {
	AppDetails(ctx context.Context, appID string) (*steam.AppDetails, error)
}

// Depot is one content unit of the installation.
type Depot struct {
	ID       uint64
	Manifest string
	// UpdatedAt is zero when the manifest metadata could not be decoded.
	UpdatedAt time.Time
	Name      string
}

// Catalog is the ordered depot set plus the newest depot timestamp.
type Catalog struct {
	Depots     []Depot
	MostRecent time.Time
	// Warnings counts degraded records (undecodable manifests, failed name lookups).
	Warnings int
}

// Named returns how many depots carry an add-on name.
func (c *Catalog) Named() int {
	n := 0
	for _, d := range c.Depots {
		if d.Name != "" {
			n++
		}
	}
	return n
}

// Builder assembles catalogs.
type Builder struct {
	schema     *manifest.Schema
	store      Store
	appID      string
	namePrefix string
	pacer      *steam.Pacer
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPacer spaces add-on name lookups.
func WithPacer(p *steam.Pacer) Option {
	return func(b *Builder) { b.pacer = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logging.NewComponentLogger(logger, "catalog") }
}

// NewBuilder creates a builder for appID. namePrefix is stripped from add-on
// display names.
func NewBuilder(schema *manifest.Schema, store Store, appID, namePrefix string, opts ...Option) (*Builder, error) {
	if schema == nil {
		return nil, errors.New("catalog: manifest schema required")
	}
	if store == nil {
		return nil, errors.New("catalog: store required")
	}
	b := &Builder{
		schema:     schema,
		store:      store,
		appID:      strings.TrimSpace(appID),
		namePrefix: strings.TrimSpace(namePrefix),
		logger:     logging.NewComponentLogger(nil, "catalog"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type manifestFile struct {
	depot    uint64
	manifest string
	path     string
}

// Build scans manifestDir and returns the catalog. A missing directory or a
// failed product lookup is fatal; bad manifests and failed add-on lookups only
// degrade their record.
func (b *Builder) Build(ctx context.Context, manifestDir string) (*Catalog, error) {
	files, err := b.listManifests(manifestDir)
	if err != nil {
		return nil, err
	}
	b.logger.Info("depot manifests found", logging.Int("count", len(files)), logging.String("dir", manifestDir))

	addOns, err := b.addOnSet(ctx)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Depots: make([]Depot, 0, len(files))}
	for _, mf := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		depot := Depot{ID: mf.depot, Manifest: mf.manifest}

		meta, err := manifest.ParseFile(b.schema, mf.path)
		if err != nil {
			cat.Warnings++
			logging.WarnWithContext(b.logger, "manifest metadata unreadable; depot recorded without timestamp", "manifest_decode_failed",
				logging.Any("depot", mf.depot),
				logging.String("path", mf.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-download the depot if the manifest is corrupt"),
				logging.String(logging.FieldImpact, "depot has no updated timestamp"),
			)
		} else if ts, ok := meta.UpdatedAt(); ok {
			depot.UpdatedAt = ts
			if ts.After(cat.MostRecent) {
				cat.MostRecent = ts
			}
		}

		if _, ok := addOns[mf.depot]; ok {
			name, err := b.lookupName(ctx, mf.depot)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				cat.Warnings++
				logging.WarnWithContext(b.logger, "add-on name lookup failed; depot recorded without name", "addon_lookup_failed",
					logging.Any("depot", mf.depot),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, services.Hint(err)),
					logging.String(logging.FieldImpact, "depot has no display name"),
				)
			} else if name != "" {
				depot.Name = name
				b.logger.Info("add-on named", logging.Any("depot", mf.depot), logging.String("name", name))
			}
		}

		cat.Depots = append(cat.Depots, depot)
	}

	b.logger.Info("catalog built",
		logging.Int("depots", len(cat.Depots)),
		logging.Int("named", cat.Named()),
		logging.String("most_recent", formatOrEmpty(cat.MostRecent)),
	)
	return cat, nil
}

func (b *Builder) listManifests(dir string) ([]manifestFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrPrecondition, "catalog", "scan manifests",
				fmt.Sprintf("manifest directory not found: %s", dir), nil)
		}
		return nil, services.Wrap(services.ErrPrecondition, "catalog", "scan manifests", dir, err)
	}

	var files []manifestFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := manifestName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			b.logger.Debug("skipping manifest with out-of-range depot id", logging.String("file", entry.Name()))
			continue
		}
		files = append(files, manifestFile{depot: id, manifest: m[2], path: filepath.Join(dir, entry.Name())})
	}
	slices.SortStableFunc(files, func(a, b manifestFile) int {
		switch {
		case a.depot < b.depot:
			return -1
		case a.depot > b.depot:
			return 1
		default:
			return strings.Compare(a.manifest, b.manifest)
		}
	})
	return files, nil
}

func (b *Builder) addOnSet(ctx context.Context) (map[uint64]struct{}, error) {
	details, err := b.store.AppDetails(ctx, b.appID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(b.logger, "product has no store details; no add-ons will be named", "addon_list_missing",
				logging.String("app_id", b.appID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "add-on depots have no display names"),
			)
			return map[uint64]struct{}{}, nil
		}
		return nil, err
	}
	set := make(map[uint64]struct{}, len(details.DLC))
	for _, id := range details.DLC {
		if id > 0 {
			set[uint64(id)] = struct{}{}
		}
	}
	b.logger.Info("add-on list fetched", logging.Int("count", len(set)))
	return set, nil
}

func (b *Builder) lookupName(ctx context.Context, depot uint64) (string, error) {
	if err := b.pacer.Wait(ctx); err != nil {
		return "", err
	}
	details, err := b.store.AppDetails(ctx, strconv.FormatUint(depot, 10))
	if err != nil {
		return "", err
	}
	return NormalizeName(b.namePrefix, details.Name), nil
}

// NormalizeName composes name to NFC, trims it, and strips a leading
// "<prefix>:" and then a leading "<prefix> ".
func NormalizeName(prefix, name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	prefix = strings.TrimSpace(norm.NFC.String(prefix))
	if prefix == "" || name == "" {
		return name
	}
	if rest, ok := strings.CutPrefix(name, prefix+":"); ok {
		name = strings.TrimLeft(rest, whitespace)
	}
	if rest, ok := strings.CutPrefix(name, prefix); ok {
		if trimmed := strings.TrimLeft(rest, whitespace); trimmed != rest {
			name = trimmed
		}
	}
	return name
}

const whitespace = " \t\r\n"

func formatOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return manifest.FormatTimestamp(t)
}
