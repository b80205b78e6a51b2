package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by RequireCredentials so cache and config commands work
// without them.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateTVDB(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateReport()
}

// RequireCredentials reports a descriptive error when the Plex token or the
// TVDB API key is missing.
func (c *Config) RequireCredentials() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("plex.token is required. Set PLEX_TOKEN env var or edit %s (create with 'episodegap config init')", defaultPath)
	}
	if c.TVDB.APIKey == "" {
		return fmt.Errorf("tvdb.api_key is required. Set TVDB_API_KEY env var or edit %s (create with 'episodegap config init')", defaultPath)
	}
	return nil
}

func (c *Config) validatePlex() error {
	if err := validateHTTPURL("plex.url", c.Plex.URL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTVDB() error {
	return validateHTTPURL("tvdb.base_url", c.TVDB.BaseURL)
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendJSON, CacheBackendSQLite:
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (must be %s or %s)", c.Cache.Backend, CacheBackendJSON, CacheBackendSQLite)
	}
	if c.Cache.ExpiryDays < 0 {
		return errors.New("cache.expiry_days must not be negative")
	}
	return nil
}

func (c *Config) validateReport() error {
	if !strings.HasSuffix(strings.ToLower(c.Report.Path), ".xlsx") {
		return fmt.Errorf("report.path must end in .xlsx, got %q", c.Report.Path)
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}
