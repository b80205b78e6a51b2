package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizePlex()
	c.normalizeTVDB()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeReport(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePlex() {
	if strings.TrimSpace(c.Plex.URL) == "" {
		if value, ok := os.LookupEnv("PLEX_URL"); ok {
			c.Plex.URL = value
		}
	}
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	if c.Plex.URL == "" {
		c.Plex.URL = defaultPlexURL
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = value
		}
	}
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)

	libs := make([]string, 0, len(c.Plex.Libraries))
	seen := make(map[string]struct{}, len(c.Plex.Libraries))
	for _, lib := range c.Plex.Libraries {
		trimmed := strings.TrimSpace(lib)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		libs = append(libs, trimmed)
	}
	c.Plex.Libraries = libs

	if c.Plex.TimeoutSeconds <= 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeoutSeconds
	}
}

func (c *Config) normalizeTVDB() {
	if strings.TrimSpace(c.TVDB.APIKey) == "" {
		if value, ok := os.LookupEnv("TVDB_API_KEY"); ok {
			c.TVDB.APIKey = value
		}
	}
	c.TVDB.APIKey = strings.TrimSpace(c.TVDB.APIKey)
	if strings.TrimSpace(c.TVDB.PIN) == "" {
		if value, ok := os.LookupEnv("TVDB_PIN"); ok {
			c.TVDB.PIN = value
		}
	}
	c.TVDB.PIN = strings.TrimSpace(c.TVDB.PIN)
	c.TVDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVDB.BaseURL), "/")
	if c.TVDB.BaseURL == "" {
		c.TVDB.BaseURL = defaultTVDBBaseURL
	}
	c.TVDB.Language = strings.ToLower(strings.TrimSpace(c.TVDB.Language))
	if c.TVDB.TimeoutSeconds <= 0 {
		c.TVDB.TimeoutSeconds = defaultTVDBTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Cache.ExpiryDays == 0 {
		c.Cache.ExpiryDays = defaultCacheExpiryDays
	}
	return nil
}

func (c *Config) normalizeReport() error {
	if strings.TrimSpace(c.Report.Path) == "" {
		c.Report.Path = defaultReportPath
	}
	var err error
	if c.Report.Path, err = expandPath(strings.TrimSpace(c.Report.Path)); err != nil {
		return fmt.Errorf("report.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	return nil
}
