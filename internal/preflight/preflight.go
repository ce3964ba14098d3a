package preflight

import (
	"context"

	"modbase/internal/config"
	"modbase/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional failures are reported but do not fail the doctor run.
	Optional bool
	Detail   string
}

// RunAll executes every check for cfg. store may be nil to skip the
// reachability check.
func RunAll(ctx context.Context, cfg *config.Config, store AppDetailer) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		results = append(results, fromStatus(status))
	}

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if store != nil {
		results = append(results, CheckStore(ctx, store, cfg.Product.AppID))
	}
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

func fromStatus(s deps.Status) Result {
	r := Result{Name: s.Name, Passed: s.Available, Optional: s.Optional}
	if s.Available {
		r.Detail = s.Path
	} else {
		r.Detail = s.Detail
	}
	return r
}
