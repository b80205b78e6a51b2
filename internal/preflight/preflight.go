package preflight

import (
	"context"
	"path/filepath"

	"episodegap/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Cache directory", cfg.Cache.Dir),
		CheckDirectoryAccess("Report directory", filepath.Dir(cfg.Report.Path)),
	}
	if cfg.Logging.File != "" {
		results = append(results, CheckDirectoryAccess("Log directory", filepath.Dir(cfg.Logging.File)))
	}
	results = append(results,
		CheckPlex(ctx, cfg.Plex.URL, cfg.Plex.Token),
		CheckTVDB(ctx, cfg.TVDB),
	)
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
