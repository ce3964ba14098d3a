package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"modbase/internal/services"
	"modbase/internal/services/steam"
)

// AppDetailer is the store lookup used for the reachability check.
type AppDetailer interface {
	AppDetails(ctx context.Context, appID string) (*steam.AppDetails, error)
}

// CheckStore verifies the store answers an app-details lookup for appID.
func CheckStore(ctx context.Context, store AppDetailer, appID string) Result {
	const name = "Store"

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	details, err := store.AppDetails(checkCtx, appID)
	switch {
	case err == nil:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%s, %d add-ons)", details.Name, len(details.DLC))}
	case errors.Is(err, services.ErrNotFound):
		return Result{Name: name, Detail: fmt.Sprintf("reachable, but app %s is unknown", appID)}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Name: name, Detail: "timed out"}
	default:
		return Result{Name: name, Detail: err.Error()}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
