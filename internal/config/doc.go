// Package config loads and validates the trailgrab configuration file.
//
// Configuration is TOML, defaulting to ~/.config/trailgrab/config.toml with a
// project-local trailgrab.toml fallback. Load applies defaults, expands ~ in
// path values, and validates the result before anything else runs.
package config
