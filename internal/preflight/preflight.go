package preflight

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dealflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Failed reports whether the check failed and blocks evaluations.
func (r Result) Failed() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
// Checks run concurrently; results keep a fixed order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	checks := []func(context.Context) Result{
		func(context.Context) Result { return CheckDirectoryAccess("Data directory", cfg.Paths.DataDir) },
		func(context.Context) Result { return CheckDirectoryAccess("Log directory", cfg.Paths.LogDir) },
		func(context.Context) Result { return CheckDirectoryAccess("Deal note directory", cfg.Paths.DealNoteDir) },
		func(ctx context.Context) Result { return CheckStore(ctx, cfg.StorePath()) },
		func(ctx context.Context) Result { return CheckLLM(ctx, "LLM", cfg.GetLLM()) },
		func(ctx context.Context) Result { return CheckPublicData(ctx, cfg.PublicData) },
		func(context.Context) Result { return CheckNotifications(cfg.Notifications) },
	}

	results := make([]Result, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AnyFailed reports whether a required check failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
