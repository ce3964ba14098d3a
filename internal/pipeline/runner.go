package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"modbase/internal/config"
	"modbase/internal/history"
	"modbase/internal/logging"
	"modbase/internal/manifest"
	"modbase/internal/services"
	"modbase/internal/services/depotdownloader"
	"modbase/internal/services/steam"
)

// Remote is the store surface the runs need.
type Remote interface {
	AppDetails(ctx context.Context, appID string) (*steam.AppDetails, error)
	EventsPage(ctx context.Context, appID string, offset, count int) ([]steam.Event, error)
	NewsURL(appID, gid string) string
}

// Downloader fetches an installation.
type Downloader interface {
	Download(ctx context.Context, appID, dir string) error
}

// Runner executes pipeline runs against one configuration.
type Runner struct {
	cfg        *config.Config
	schema     *manifest.Schema
	remote     Remote
	downloader Downloader
	history    *history.Store
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRemote replaces the store client.
func WithRemote(remote Remote) Option {
	return func(r *Runner) {
		if remote != nil {
			r.remote = remote
		}
	}
}

// WithDownloader replaces the download agent.
func WithDownloader(d Downloader) Option {
	return func(r *Runner) {
		if d != nil {
			r.downloader = d
		}
	}
}

// WithHistory attaches a run ledger. The Runner does not close it.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) { r.history = store }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Runner. The store client and download agent default to the
// configured endpoints.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config required")
	}
	schema, err := manifest.NewSchema()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		schema: schema,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.remote == nil {
		client, err := steam.New(cfg.Store.BaseURL, cfg.Store.Language, cfg.Store.UserAgent, cfg.StoreTimeout())
		if err != nil {
			return nil, err
		}
		r.remote = client
	}
	if r.downloader == nil {
		agent, err := depotdownloader.New(cfg.Download.Binary,
			depotdownloader.WithCredentials(cfg.Download.Username, cfg.Download.TOTPSecret),
			depotdownloader.WithTimeout(cfg.DownloadTimeout()),
			depotdownloader.WithLogger(r.logger),
		)
		if err != nil {
			return nil, err
		}
		r.downloader = agent
	}
	return r, nil
}

// runContext stamps a run id on ctx unless the caller already did.
func runContext(ctx context.Context, command string) (context.Context, string) {
	id, ok := services.RunIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
		ctx = services.WithRunID(ctx, id)
	}
	if _, ok := services.CommandFromContext(ctx); !ok {
		ctx = services.WithCommand(ctx, command)
	}
	return ctx, id
}

func (r *Runner) componentLogger(ctx context.Context, component string) *slog.Logger {
	return logging.NewComponentLogger(logging.WithContext(ctx, r.logger), component)
}

func (r *Runner) newPacer() *steam.Pacer {
	return steam.NewPacer(r.cfg.RequestDelay())
}
