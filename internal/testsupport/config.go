package testsupport

import (
	"path/filepath"
	"testing"

	"trailgrab/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMediaServer appends a media server entry to the test config.
func WithMediaServer(server config.MediaServer) ConfigOption {
	return func(c *config.Config) {
		c.MediaServers = append(c.MediaServers, server)
	}
}

// WithProfile overrides the default download profile on the test config.
func WithProfile(profile config.Profile) ConfigOption {
	return func(c *config.Config) {
		c.Profile = profile
	}
}
