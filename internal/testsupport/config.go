package testsupport

import (
	"path/filepath"
	"testing"

	"episodegap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credentials are set to placeholder values so RequireCredentials passes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Plex.URL = "http://127.0.0.1:32400"
	cfgVal.Plex.Token = "plex-test-token"
	cfgVal.TVDB.APIKey = "tvdb-test-key"
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.Report.Path = filepath.Join(base, "report", "episodes.xlsx")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlexURL points the config at a Plex server, typically an httptest URL.
func WithPlexURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = url
	}
}

// WithTVDBURL points the config at a TheTVDB API, typically an httptest URL.
func WithTVDBURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVDB.BaseURL = url
	}
}

// WithCacheBackend selects the series cache backend.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// WithLibraries restricts the run to the named Plex libraries.
func WithLibraries(titles ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.Libraries = titles
	}
}

// WithoutCredentials clears the Plex token and TVDB API key.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.Token = ""
		b.cfg.TVDB.APIKey = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Cache.Dir)
}
