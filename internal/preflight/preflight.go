package preflight

import (
	"context"

	"trailgrab/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Media server checks are only run for enabled servers.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	for _, server := range cfg.MediaServers {
		if !server.Enabled {
			continue
		}
		results = append(results, CheckMediaServer(ctx, server))
	}

	return results
}
