package config

import (
	"os"
	"strings"
)

// normalize expands paths and fills in usable values for fields the file
// left empty or out of range.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if strings.TrimSpace(c.Catalog.Storefront) == "" {
		c.Catalog.Storefront = defaultStorefront
	}
	if strings.TrimSpace(c.Catalog.Locale) == "" {
		c.Catalog.Locale = defaultLocale
	}
	if strings.TrimSpace(c.Catalog.Region) == "" {
		c.Catalog.Region = defaultRegion
	}
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultRequestTimeout
	}

	if strings.TrimSpace(c.Search.WebSearchURL) == "" {
		c.Search.WebSearchURL = defaultWebSearchURL
	}
	if strings.TrimSpace(c.Search.MarketplaceURL) == "" {
		c.Search.MarketplaceURL = defaultMarketplaceURL
	}
	if c.Search.AcceptThreshold <= 0 {
		c.Search.AcceptThreshold = defaultAcceptThreshold
	}

	if c.Download.MaxWorkers <= 0 {
		c.Download.MaxWorkers = defaultMaxWorkers
	}
	if c.Download.RetryLimit < 0 {
		c.Download.RetryLimit = defaultRetryLimit
	}
	if c.Download.SegmentTimeout <= 0 {
		c.Download.SegmentTimeout = defaultSegmentTimeout
	}

	if c.FFmpeg.TimeoutMinutes <= 0 {
		c.FFmpeg.TimeoutMinutes = defaultFFmpegTimeout
	}

	if strings.TrimSpace(c.Profile.AudioLanguage) == "" {
		c.Profile.AudioLanguage = defaultAudioLanguage
	}
	c.Profile.AudioLanguage = strings.ToLower(strings.TrimSpace(c.Profile.AudioLanguage))
	if strings.TrimSpace(c.Profile.VideoCodec) == "" {
		c.Profile.VideoCodec = "copy"
	}
	if strings.TrimSpace(c.Profile.AudioCodec) == "" {
		c.Profile.AudioCodec = "copy"
	}
	if strings.TrimSpace(c.Profile.Container) == "" {
		c.Profile.Container = defaultContainer
	}
	c.Profile.Container = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Profile.Container), "."))
	if c.Profile.MinSizeBytes < 0 {
		c.Profile.MinSizeBytes = 0
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	for i := range c.MediaServers {
		c.MediaServers[i].Type = strings.ToLower(strings.TrimSpace(c.MediaServers[i].Type))
		c.MediaServers[i].URL = strings.TrimRight(strings.TrimSpace(c.MediaServers[i].URL), "/")
		if strings.TrimSpace(c.MediaServers[i].Name) == "" {
			c.MediaServers[i].Name = c.MediaServers[i].Type
		}
		if strings.TrimSpace(c.MediaServers[i].APIKey) == "" {
			c.MediaServers[i].APIKey = os.Getenv(serverAPIKeyEnv(c.MediaServers[i].Name))
		}
	}

	return nil
}

// serverAPIKeyEnv names the environment variable that supplies a server's
// API key when the config file leaves it out: TRAILGRAB_DEN_API_KEY for a
// server named "den".
func serverAPIKeyEnv(name string) string {
	var b strings.Builder
	b.WriteString("TRAILGRAB_")
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString("_API_KEY")
	return b.String()
}
