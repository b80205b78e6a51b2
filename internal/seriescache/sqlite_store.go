package seriescache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"episodegap/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteFileName is the database file created inside the cache directory.
const SQLiteFileName = "series_cache.db"

// SQLiteStore keeps every entry in the series_cache table of a single database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if needed) the cache database in dir.
func OpenSQLiteStore(dir string, ttl time.Duration, logger *slog.Logger, opts ...Option) (*SQLiteStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	o := buildOptions(opts)

	dbPath := filepath.Join(dir, SQLiteFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		path:   dbPath,
		ttl:    ttl,
		now:    o.now,
		logger: componentLogger(logger, "sqlite"),
	}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Get implements Store.
func (s *SQLiteStore) Get(id string) ([]byte, bool) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, false
	}
	var (
		payload []byte
		written string
	)
	err = s.db.QueryRowContext(context.Background(),
		"SELECT payload, written_at FROM series_cache WHERE id = ?", id,
	).Scan(&payload, &written)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.warnReadFailure(id, err)
		}
		return nil, false
	}
	writtenAt, err := time.Parse(time.RFC3339Nano, written)
	if err != nil {
		s.warnReadFailure(id, fmt.Errorf("parse written_at: %w", err))
		return nil, false
	}
	if !isFresh(writtenAt, s.now(), s.ttl) {
		s.logger.Debug("cache entry expired",
			logging.String(logging.FieldTVDBID, id),
			logging.String("written_at", writtenAt.Format(time.RFC3339)))
		return nil, false
	}
	return payload, true
}

// Put implements Store.
func (s *SQLiteStore) Put(id string, payload []byte) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(context.Background(),
		`INSERT INTO series_cache (id, payload, written_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`,
		id, payload, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	s.logger.Debug("cached series payload",
		logging.String(logging.FieldTVDBID, id),
		logging.Int("bytes", len(payload)))
	return nil
}

// List implements Store. Entries are sorted newest first.
func (s *SQLiteStore) List() ([]Entry, error) {
	rows, err := s.db.QueryContext(context.Background(),
		"SELECT id, length(payload), written_at FROM series_cache")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	now := s.now()
	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			written string
		)
		if err := rows.Scan(&entry.ID, &entry.Size, &written); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entry.WrittenAt, err = time.Parse(time.RFC3339Nano, written)
		if err != nil {
			return nil, fmt.Errorf("parse written_at for %s: %w", entry.ID, err)
		}
		entry.Stale = !isFresh(entry.WrittenAt, now, s.ttl)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WrittenAt.After(entries[j].WrittenAt)
	})
	return entries, nil
}

// Remove implements Store.
func (s *SQLiteStore) Remove(id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(context.Background(), "DELETE FROM series_cache WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear() (int, error) {
	res, err := s.db.ExecContext(context.Background(), "DELETE FROM series_cache")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Debug("cleared series cache", logging.Int64("removed", affected))
	return int(affected), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) warnReadFailure(id string, err error) {
	logging.WarnWithContext(s.logger, "failed to read cache entry", "cache_read_failed",
		logging.String(logging.FieldTVDBID, id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete "+SQLiteFileName+" if the database is corrupt"),
		logging.String(logging.FieldImpact, "series will be fetched from TheTVDB"))
}
