package pipeline

import (
	"context"
	"log/slog"

	"modbase/internal/history"
	"modbase/internal/logging"
	"modbase/internal/services"
)

// recorder writes ledger rows for one run and logs the run's failure. Ledger
// failures are logged and otherwise ignored.
type recorder struct {
	store     *history.Store
	id        string
	logger    *slog.Logger
	runLogger *slog.Logger
}

func (r *Runner) startRecord(ctx context.Context, id, command, version string) *recorder {
	rec := &recorder{
		store:     r.history,
		id:        id,
		logger:    r.componentLogger(ctx, "history"),
		runLogger: r.componentLogger(ctx, command),
	}
	if rec.store == nil {
		return rec
	}
	if err := rec.store.Start(ctx, id, command, version, r.now()); err != nil {
		rec.warn(err)
		rec.store = nil
	}
	return rec
}

func (rec *recorder) setVersion(ctx context.Context, version string) {
	if rec.store == nil {
		return
	}
	if err := rec.store.SetVersion(ctx, rec.id, version); err != nil {
		rec.warn(err)
	}
}

func (rec *recorder) finish(summary string, runErr error, r *Runner) {
	if runErr != nil {
		attrs := []logging.Attr{logging.Error(runErr)}
		if hint := services.Hint(runErr); hint != "" {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
		}
		logging.ErrorWithContext(rec.runLogger, "run failed", "run_failed", attrs...)
	}
	if rec.store == nil {
		return
	}
	// The run context may already be cancelled; the ledger row should still close.
	if err := rec.store.Finish(context.Background(), rec.id, summary, runErr, r.now()); err != nil {
		rec.warn(err)
	}
}

func (rec *recorder) warn(err error) {
	logging.WarnWithContext(rec.logger, "history ledger write failed", "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete the history database if it is corrupt"),
		logging.String(logging.FieldImpact, "this run will be missing from `modbase history`"),
	)
}
