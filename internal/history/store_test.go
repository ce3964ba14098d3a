package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"modbase/internal/history"
	"modbase/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStartFinishRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Start(ctx, "run-1", "parse", "", started); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.SetVersion(ctx, "run-1", "1.12.4"); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if err := store.Finish(ctx, "run-1", "42 depots", nil, started.Add(90*time.Second)); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	run, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != history.StatusSucceeded || run.Version != "1.12.4" || run.Summary != "42 depots" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Duration() != 90*time.Second {
		t.Fatalf("duration = %s", run.Duration())
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := store.Start(ctx, "run-2", "extract", "", now); err != nil {
		t.Fatal(err)
	}
	if err := store.Finish(ctx, "run-2", "", errors.New("output directory must be empty"), now); err != nil {
		t.Fatal(err)
	}
	run, err := store.Get(ctx, "run-2")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != history.StatusFailed || run.Error != "output directory must be empty" {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.Start(ctx, id, "parse", "", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[0].Status != history.StatusRunning || !runs[0].FinishedAt.IsZero() {
		t.Fatalf("unfinished run should be running: %+v", runs[0])
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestUnknownRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("Get: expected ErrRunNotFound, got %v", err)
	}
	if err := store.Finish(ctx, "missing", "", nil, time.Now()); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("Finish: expected ErrRunNotFound, got %v", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Start(context.Background(), "keep", "download", "1.12.4", time.Now()); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}
