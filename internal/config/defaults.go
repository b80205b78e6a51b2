package config

const (
	defaultConfigPath         = "~/.config/episodegap/config.toml"
	defaultPlexURL            = "http://localhost:32400"
	defaultPlexTimeoutSeconds = 30
	defaultTVDBBaseURL        = "https://api4.thetvdb.com/v4"
	defaultTVDBTimeoutSeconds = 30
	defaultCacheBackend       = CacheBackendJSON
	defaultCacheExpiryDays    = 14
	defaultReportPath         = "plex-episodes-report.xlsx"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 3
)

// Supported cache backends.
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			TimeoutSeconds: defaultPlexTimeoutSeconds,
		},
		TVDB: TVDB{
			BaseURL:        defaultTVDBBaseURL,
			TimeoutSeconds: defaultTVDBTimeoutSeconds,
		},
		Cache: Cache{
			Backend:    defaultCacheBackend,
			Dir:        defaultCacheDir(),
			ExpiryDays: defaultCacheExpiryDays,
		},
		Report: Report{
			Path: defaultReportPath,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			ASCII:      true,
		},
	}
}
