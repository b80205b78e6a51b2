package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"episodegap/internal/catalog"
	"episodegap/internal/config"
	"episodegap/internal/fileutil"
	"episodegap/internal/inventory"
	"episodegap/internal/logging"
	"episodegap/internal/report"
	"episodegap/internal/seriescache"
	"episodegap/internal/services/plex"
	"episodegap/internal/services/tvdb"
)

const (
	lockFileName     = "episodegap.lock"
	clientIDFileName = "plex-client-id"
)

// ErrLocked is returned when another run holds the cache directory lock.
var ErrLocked = errors.New("another episodegap run is using the cache directory")

// Execute runs a full reconciliation from cfg and saves the report to
// cfg.Report.Path. The report is saved even when the run aborts; the returned
// error then carries both failures.
func Execute(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Outcome, *report.Report, error) {
	if cfg == nil {
		return Outcome{}, nil, errors.New("config is required")
	}
	if err := cfg.RequireCredentials(); err != nil {
		return Outcome{}, nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Outcome{}, nil, err
	}

	base := logger
	logger = logging.NewComponentLogger(base, "session")
	lock, err := AcquireLock(cfg.Cache.Dir)
	if err != nil {
		return Outcome{}, nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger = logging.WithContext(ctx, logger)
	logger.Info("starting episode report", logging.String("report", cfg.Report.Path))

	store, err := seriescache.Open(cfg, base)
	if err != nil {
		return Outcome{RunID: runID}, nil, fmt.Errorf("open series cache: %w", err)
	}
	defer store.Close()

	tvdbClient, err := tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.PIN, cfg.TVDB.BaseURL,
		tvdb.WithHTTPClient(&http.Client{Timeout: cfg.TVDBTimeout()}),
		tvdb.WithLanguage(cfg.TVDB.Language))
	if err != nil {
		return Outcome{RunID: runID}, nil, err
	}
	plexClient := plex.New(cfg.Plex.URL, cfg.Plex.Token, clientIdentifier(cfg.Cache.Dir, logger),
		plex.WithTimeout(cfg.PlexTimeout()))

	r := New(
		plexClient,
		catalog.NewResolver(tvdbClient, store, base),
		inventory.NewBuilder(plexClient, base),
		base,
		WithLibraries(cfg.Plex.Libraries),
		WithAuthenticator(tvdbClient),
	)

	rep := report.New()
	outcome, runErr := r.Run(ctx, rep)
	outcome.RunID = runID

	logger.Info("saving report", logging.String("path", cfg.Report.Path))
	if saveErr := rep.Save(cfg.Report.Path); saveErr != nil {
		logger.Error("saving report failed", logging.Error(saveErr))
		return outcome, rep, errors.Join(runErr, fmt.Errorf("save report: %w", saveErr))
	}
	logger.Info("report generation complete",
		logging.Int("libraries", outcome.Libraries),
		logging.Int("shows", outcome.Shows),
		logging.Bool("interrupted", outcome.Interrupted),
		logging.Duration("duration", outcome.Duration))
	return outcome, rep, runErr
}

// AcquireLock takes the exclusive run lock inside dir. The caller must Unlock it.
func AcquireLock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}

// clientIdentifier returns the Plex client identifier persisted in dir,
// generating one on first use. A write failure falls back to a per-run value.
func clientIdentifier(dir string, logger *slog.Logger) string {
	path := filepath.Join(dir, clientIDFileName)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if err := fileutil.WriteFileAtomic(path, []byte(id+"\n"), 0o644); err != nil {
		logger.Debug("could not persist plex client identifier", logging.Error(err))
	}
	return id
}
