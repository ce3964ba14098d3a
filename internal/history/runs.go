package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed width so TEXT ordering matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// Start inserts a running row.
func (s *Store) Start(ctx context.Context, id, command, version string, startedAt time.Time) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("run id is required")
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, command, version, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, command, version, string(StatusRunning), startedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// Finish records the outcome of a started run. A nil runErr marks success.
func (s *Store) Finish(ctx context.Context, id, summary string, runErr error, finishedAt time.Time) error {
	status := StatusSucceeded
	message := ""
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, summary = ?, error_message = ? WHERE id = ?`,
		string(status), finishedAt.UTC().Format(timeLayout), summary, message, id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// SetVersion fills in the version once a run has resolved it.
func (s *Store) SetVersion(ctx context.Context, id, version string) error {
	_, err := s.exec(ctx, `UPDATE runs SET version = ? WHERE id = ?`, version, id)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	return nil
}

// Get returns one run.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// List returns the newest runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := selectRuns + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const selectRuns = `SELECT id, command, version, status, started_at, finished_at, summary, error_message FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		status   string
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Command, &run.Version, &status, &started, &finished, &run.Summary, &run.Error); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at for %s: %w", run.ID, err)
	}
	if finished.Valid && finished.String != "" {
		if run.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
			return Run{}, fmt.Errorf("parse finished_at for %s: %w", run.ID, err)
		}
	}
	return run, nil
}
