package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"episodegap/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Plex contains connection settings for the Plex Media Server.
type Plex struct {
	URL            string   `toml:"url"`
	Token          string   `toml:"token"`
	Libraries      []string `toml:"libraries"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// TVDB contains configuration for TheTVDB v4 API.
type TVDB struct {
	APIKey         string `toml:"api_key"`
	PIN            string `toml:"pin"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Cache contains configuration for the series metadata cache.
type Cache struct {
	Backend    string `toml:"backend"` // "json" or "sqlite"
	Dir        string `toml:"dir"`
	ExpiryDays int    `toml:"expiry_days"`
}

// Report contains configuration for the spreadsheet output.
type Report struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	ASCII      bool   `toml:"ascii"`
}

// Config encapsulates all configuration values for episodegap.
//
// Configuration sections by subsystem:
//   - Plex: library server connection and library filter
//   - TVDB: catalog credentials and endpoint
//   - Cache: series metadata cache backend, location, and expiry
//   - Report: spreadsheet destination
//   - Logging: log format, level, and optional rotated log file
type Config struct {
	Plex    Plex    `toml:"plex"`
	TVDB    TVDB    `toml:"tvdb"`
	Cache   Cache   `toml:"cache"`
	Report  Report  `toml:"report"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("episodegap.toml")
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

// EnsureDirectories creates the cache directory and the parent of the report
// and log files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Cache.Dir, filepath.Dir(c.Report.Path)}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CacheExpiry returns the cache validity window.
func (c *Config) CacheExpiry() time.Duration {
	return time.Duration(c.Cache.ExpiryDays) * 24 * time.Hour
}

// PlexTimeout returns the per-request timeout for Plex calls.
func (c *Config) PlexTimeout() time.Duration {
	return time.Duration(c.Plex.TimeoutSeconds) * time.Second
}

// TVDBTimeout returns the per-request timeout for TVDB calls.
func (c *Config) TVDBTimeout() time.Duration {
	return time.Duration(c.TVDB.TimeoutSeconds) * time.Second
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

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "episodegap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/episodegap"
	}
	return filepath.Join(home, ".cache", "episodegap")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
