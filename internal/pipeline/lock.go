package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"modbase/internal/services"
)

// acquireLock takes the exclusive run lock without blocking. The returned
// func releases it.
func acquireLock(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPrecondition, "pipeline", "lock", "create state directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPrecondition, "pipeline", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrPrecondition, "pipeline", "lock",
			fmt.Sprintf("another modbase run holds %s", path), nil)
	}
	return lock.Unlock, nil
}
