package config

const (
	defaultStagingDir      = "~/.local/share/trailgrab/staging"
	defaultLibraryDir      = "~/library"
	defaultDataDir         = "~/.local/share/trailgrab"
	defaultLogDir          = "~/.local/share/trailgrab/logs"
	defaultCatalogBaseURL  = "https://tv.apple.com"
	defaultStorefront      = "143441"
	defaultLocale          = "en-US"
	defaultRegion          = "us"
	defaultRequestTimeout  = 30
	defaultWebSearchURL    = "https://html.duckduckgo.com/html/"
	defaultMarketplaceURL  = "https://itunes.apple.com/search"
	defaultAcceptThreshold = 50
	defaultMaxWorkers      = 10
	defaultRetryLimit      = 2
	defaultSegmentTimeout  = 300
	defaultFFmpegTimeout   = 15
	defaultAudioLanguage   = "en"
	defaultContainer       = "mkv"
	defaultMinSizeBytes    = 100 * 1024
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			Storefront:     defaultStorefront,
			Locale:         defaultLocale,
			Region:         defaultRegion,
			RequestTimeout: defaultRequestTimeout,
		},
		Search: Search{
			WebSearchURL:    defaultWebSearchURL,
			MarketplaceURL:  defaultMarketplaceURL,
			AcceptThreshold: defaultAcceptThreshold,
		},
		Download: Download{
			MaxWorkers:     defaultMaxWorkers,
			RetryLimit:     defaultRetryLimit,
			SegmentTimeout: defaultSegmentTimeout,
		},
		FFmpeg: FFmpeg{
			TimeoutMinutes: defaultFFmpegTimeout,
		},
		Profile: Profile{
			AudioLanguage:  defaultAudioLanguage,
			VideoCodec:     "copy",
			AudioCodec:     "copy",
			Container:      defaultContainer,
			StopMonitoring: true,
			MinSizeBytes:   defaultMinSizeBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
