package seriescache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"episodegap/internal/logging"
)

const (
	jsonPrefix = "tvdb_"
	jsonSuffix = ".json"
)

// JSONStore keeps one tvdb_<id>.json file per series. The file modification
// time is the write time.
type JSONStore struct {
	dir    string
	ttl    time.Duration
	fs     afero.Fs
	now    func() time.Time
	logger *slog.Logger
	mu     sync.Mutex
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore creates the cache directory if needed and returns a store
// rooted there.
func NewJSONStore(dir string, ttl time.Duration, logger *slog.Logger, opts ...Option) (*JSONStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	o := buildOptions(opts)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &JSONStore{
		dir:    dir,
		ttl:    ttl,
		fs:     o.fs,
		now:    o.now,
		logger: componentLogger(logger, "json"),
	}, nil
}

func (s *JSONStore) pathFor(id string) string {
	return filepath.Join(s.dir, jsonPrefix+id+jsonSuffix)
}

// Get implements Store.
func (s *JSONStore) Get(id string) ([]byte, bool) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(id)
	info, err := s.fs.Stat(target)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.warnReadFailure(id, err)
		}
		return nil, false
	}
	if !isFresh(info.ModTime(), s.now(), s.ttl) {
		s.logger.Debug("cache entry expired",
			logging.String(logging.FieldTVDBID, id),
			logging.String("written_at", info.ModTime().Format(time.RFC3339)))
		return nil, false
	}
	data, err := afero.ReadFile(s.fs, target)
	if err != nil {
		s.warnReadFailure(id, err)
		return nil, false
	}
	return data, true
}

// Put implements Store. The payload is written to a temporary file in the
// cache directory and renamed over the entry.
func (s *JSONStore) Put(id string, payload []byte) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := afero.TempFile(s.fs, s.dir, jsonPrefix+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	target := s.pathFor(id)
	if err := s.fs.Rename(tmpName, target); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}
	now := s.now()
	if err := s.fs.Chtimes(target, now, now); err != nil {
		return fmt.Errorf("stamp cache file: %w", err)
	}
	s.logger.Debug("cached series payload",
		logging.String(logging.FieldTVDBID, id),
		logging.Int("bytes", len(payload)))
	return nil
}

// List implements Store. Entries are sorted newest first.
func (s *JSONStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	now := s.now()
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		id, ok := idFromFileName(info.Name())
		if info.IsDir() || !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:        id,
			WrittenAt: info.ModTime(),
			Size:      info.Size(),
			Stale:     !isFresh(info.ModTime(), now, s.ttl),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WrittenAt.After(entries[j].WrittenAt)
	})
	return entries, nil
}

// Remove implements Store.
func (s *JSONStore) Remove(id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.pathFor(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *JSONStore) Clear() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, entry := range entries {
		if err := s.fs.Remove(s.pathFor(entry.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove cache file: %w", err)
		}
		removed++
	}
	s.logger.Debug("cleared series cache", logging.Int("removed", removed))
	return removed, nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) warnReadFailure(id string, err error) {
	logging.WarnWithContext(s.logger, "failed to read cache entry", "cache_read_failed",
		logging.String(logging.FieldTVDBID, id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
		logging.String(logging.FieldImpact, "series will be fetched from TheTVDB"))
}

func idFromFileName(name string) (string, bool) {
	if path.Ext(name) != jsonSuffix || !strings.HasPrefix(name, jsonPrefix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, jsonPrefix), jsonSuffix)
	if !validID.MatchString(id) {
		return "", false
	}
	return id, true
}
