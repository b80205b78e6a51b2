package seriescache

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"episodegap/internal/config"
	"episodegap/internal/logging"
)

// ErrNotFound is returned by Remove when no entry exists for the identifier.
var ErrNotFound = errors.New("cache entry not found")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Entry describes a cached payload for management listings.
type Entry struct {
	ID        string
	WrittenAt time.Time
	Size      int64
	Stale     bool
}

// Store is a time-bounded payload cache keyed by series identifier.
type Store interface {
	// Get returns the payload when an entry exists and was written within the
	// expiry window. Read failures are logged and reported as a miss.
	Get(id string) ([]byte, bool)
	// Put writes payload, replacing any previous entry for id.
	Put(id string, payload []byte) error
	List() ([]Entry, error)
	Remove(id string) error
	// Clear removes every entry and returns how many were removed.
	Clear() (int, error)
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
	fs  afero.Fs
}

// WithClock overrides the clock used for expiry decisions and write stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFs overrides the filesystem used by the JSON backend.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open returns the backend selected by cfg.Cache.Backend.
func Open(cfg *config.Config, logger *slog.Logger, opts ...Option) (Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendJSON, "":
		return NewJSONStore(cfg.Cache.Dir, cfg.CacheExpiry(), logger, opts...)
	case config.CacheBackendSQLite:
		return OpenSQLiteStore(cfg.Cache.Dir, cfg.CacheExpiry(), logger, opts...)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("series id cannot be empty")
	}
	if !validID.MatchString(id) {
		return "", fmt.Errorf("invalid series id %q", id)
	}
	return id, nil
}

func isFresh(writtenAt, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(writtenAt) < ttl
}

func componentLogger(logger *slog.Logger, backend string) *slog.Logger {
	return logging.NewComponentLogger(logger, "seriescache").With(logging.String("backend", backend))
}
