package preflight

import (
	"context"

	"packhub/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDecodeMode(cfg.Decode.Mode),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if path := cfg.CachePath(); path != "" {
		results = append(results, CheckPackCache(ctx, path))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
