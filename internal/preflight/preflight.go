package preflight

import (
	"context"
	"path/filepath"

	"github.com/satishgoda/watchtower/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks that apply to cfg: the data source (local tree
// or provider), then the cache and log directories when configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.DataSource.DataDir != "" {
		results = append(results, CheckDataTree("Data directory", cfg.DataSource.DataDir))
	} else {
		results = append(results, CheckProvider(ctx, cfg))
	}

	if cfg.Cache.Enabled && cfg.Cache.Path != "" {
		results = append(results, CheckWritableDir("Cache directory", filepath.Dir(cfg.Cache.Path)))
	}

	if cfg.Logging.Dir != "" {
		results = append(results, CheckWritableDir("Log directory", cfg.Logging.Dir))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
