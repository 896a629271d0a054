package config

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	validServerTypes = map[string]bool{"emby": true, "jellyfin": true, "plex": true}
	validVideoCodecs = map[string]bool{"copy": true, "h264": true, "h265": true, "vp8": true, "vp9": true, "av1": true}
	validAudioCodecs = map[string]bool{"copy": true, "aac": true, "ac3": true, "eac3": true, "mp3": true, "opus": true, "flac": true}
	validContainers  = map[string]bool{"mkv": true, "mp4": true, "webm": true}
	validLogFormats  = map[string]bool{"console": true, "json": true}
)

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	var problems []string

	if _, err := url.ParseRequestURI(c.Catalog.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("catalog.base_url %q is not a valid URL", c.Catalog.BaseURL))
	}
	if _, err := url.ParseRequestURI(c.Search.WebSearchURL); err != nil {
		problems = append(problems, fmt.Sprintf("search.web_search_url %q is not a valid URL", c.Search.WebSearchURL))
	}
	if _, err := url.ParseRequestURI(c.Search.MarketplaceURL); err != nil {
		problems = append(problems, fmt.Sprintf("search.marketplace_url %q is not a valid URL", c.Search.MarketplaceURL))
	}
	if c.Search.AcceptThreshold > 200 {
		problems = append(problems, fmt.Sprintf("search.accept_threshold %d exceeds the maximum possible score", c.Search.AcceptThreshold))
	}
	if c.Profile.MaxResolution < 0 {
		problems = append(problems, "profile.max_resolution must be zero (unlimited) or a positive height")
	}
	if !validVideoCodecs[c.Profile.VideoCodec] {
		problems = append(problems, fmt.Sprintf("profile.video_codec %q is not supported", c.Profile.VideoCodec))
	}
	if !validAudioCodecs[c.Profile.AudioCodec] {
		problems = append(problems, fmt.Sprintf("profile.audio_codec %q is not supported", c.Profile.AudioCodec))
	}
	if !validContainers[c.Profile.Container] {
		problems = append(problems, fmt.Sprintf("profile.container %q is not supported", c.Profile.Container))
	}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console or json)", c.Logging.Format))
	}

	for i, server := range c.MediaServers {
		if !validServerTypes[server.Type] {
			problems = append(problems, fmt.Sprintf("media_server[%d].type %q is not supported (emby, jellyfin, or plex)", i, server.Type))
			continue
		}
		if !server.Enabled {
			continue
		}
		if _, err := url.ParseRequestURI(server.URL); err != nil {
			problems = append(problems, fmt.Sprintf("media_server[%d].url %q is not a valid URL", i, server.URL))
		}
		if strings.TrimSpace(server.APIKey) == "" {
			problems = append(problems, fmt.Sprintf("media_server[%d] is enabled but has no api_key", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
