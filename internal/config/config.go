package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Catalog contains configuration for the primary video catalog.
type Catalog struct {
	BaseURL        string `toml:"base_url"`
	Storefront     string `toml:"storefront"`
	Locale         string `toml:"locale"`
	Region         string `toml:"region"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Search contains configuration for the fallback discovery strategies.
type Search struct {
	WebSearchURL    string `toml:"web_search_url"`
	MarketplaceURL  string `toml:"marketplace_url"`
	AcceptThreshold int    `toml:"accept_threshold"`
}

// Download contains configuration for segmented stream retrieval.
type Download struct {
	MaxWorkers     int `toml:"max_workers"`
	RetryLimit     int `toml:"retry_limit"`
	SegmentTimeout int `toml:"segment_timeout"`
}

// FFmpeg contains configuration for the external encoding tool.
type FFmpeg struct {
	Path           string `toml:"path"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
}

// Profile describes the default download profile applied when the store has
// no profile for a media item.
type Profile struct {
	MaxResolution  int    `toml:"max_resolution"`
	AudioLanguage  string `toml:"audio_language"`
	VideoCodec     string `toml:"video_codec"`
	AudioCodec     string `toml:"audio_codec"`
	Container      string `toml:"container"`
	StopMonitoring bool   `toml:"stop_monitoring"`
	MinSizeBytes   int64  `toml:"min_size_bytes"`
}

// MediaServer describes one media server to notify after a download.
type MediaServer struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Enabled bool   `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for trailgrab.
//
// Configuration sections by subsystem:
//   - Paths: staging, library, and log directories
//   - Catalog: primary catalog endpoints and storefront identity
//   - Search: fallback web search and marketplace endpoints, score threshold
//   - Download: segment pool size and retry budget
//   - FFmpeg: encoding tool path and process timeout
//   - Profile: default download profile values
//   - MediaServers: servers to notify after successful downloads
//   - Logging: log format and level
type Config struct {
	Paths        Paths         `toml:"paths"`
	Catalog      Catalog       `toml:"catalog"`
	Search       Search        `toml:"search"`
	Download     Download      `toml:"download"`
	FFmpeg       FFmpeg        `toml:"ffmpeg"`
	Profile      Profile       `toml:"profile"`
	MediaServers []MediaServer `toml:"media_server"`
	Logging      Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/trailgrab/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("trailgrab.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the staging, library, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LibraryDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
