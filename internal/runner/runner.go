package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"episodegap/internal/catalog"
	"episodegap/internal/inventory"
	"episodegap/internal/logging"
	"episodegap/internal/reconcile"
	"episodegap/internal/report"
	"episodegap/internal/services/plex"
)

// Library is the Plex surface the runner walks.
type Library interface {
	ShowSections(ctx context.Context, titles []string) ([]plex.Section, error)
	Shows(ctx context.Context, sectionKey string) ([]plex.Show, error)
	Episodes(ctx context.Context, showRatingKey string) ([]plex.Episode, error)
}

// Authenticator establishes the catalog session before any show is resolved.
type Authenticator interface {
	Login(ctx context.Context) error
}

// Resolver maps a show to its canonical catalog data.
type Resolver interface {
	Resolve(ctx context.Context, q catalog.Query) (*catalog.Result, error)
}

// InventoryBuilder builds the local episode map of one show.
type InventoryBuilder interface {
	Build(ctx context.Context, episodes []plex.Episode) *inventory.Inventory
}

var (
	_ Library          = (*plex.Client)(nil)
	_ Resolver         = (*catalog.Resolver)(nil)
	_ InventoryBuilder = (*inventory.Builder)(nil)
)

// Outcome summarizes a finished run.
type Outcome struct {
	RunID       string
	Libraries   int
	Shows       int
	Interrupted bool
	Duration    time.Duration
}

// Runner walks libraries and shows sequentially.
type Runner struct {
	library    Library
	auth       Authenticator
	resolver   Resolver
	builder    InventoryBuilder
	reconciler *reconcile.Reconciler
	libraries  []string
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLibraries restricts the run to the named Plex libraries.
func WithLibraries(titles []string) Option {
	return func(r *Runner) {
		r.libraries = append([]string(nil), titles...)
	}
}

// WithAuthenticator sets the catalog login performed before processing.
func WithAuthenticator(auth Authenticator) Option {
	return func(r *Runner) {
		r.auth = auth
	}
}

// WithClock overrides the time source used for the run duration.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Runner.
func New(library Library, resolver Resolver, builder InventoryBuilder, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		library:    library,
		resolver:   resolver,
		builder:    builder,
		reconciler: reconcile.New(logger),
		logger:     logging.NewComponentLogger(logger, "runner"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every selected library into rep. A returned error means the
// run aborted before or while listing libraries; rows appended before the
// failure stay in rep. An interrupt is not an error.
func (r *Runner) Run(ctx context.Context, rep *report.Report) (Outcome, error) {
	if rep == nil {
		return Outcome{}, errors.New("report is required")
	}
	started := r.now()
	runID, _ := logging.RunIDFromContext(ctx)
	outcome := Outcome{RunID: runID}
	logger := logging.WithContext(ctx, r.logger)
	calls := context.WithoutCancel(ctx)

	if r.auth != nil {
		logger.Info("connecting to tvdb")
		if err := r.auth.Login(calls); err != nil {
			logger.Error("tvdb login failed", logging.Error(err))
			return r.finish(outcome, started), fmt.Errorf("connect to tvdb: %w", err)
		}
	}

	logger.Info("fetching plex libraries")
	sections, err := r.library.ShowSections(calls, r.libraries)
	if err != nil {
		logger.Error("listing plex libraries failed", logging.Error(err))
		return r.finish(outcome, started), fmt.Errorf("list plex libraries: %w", err)
	}
	if len(sections) == 0 {
		logging.WarnWithContext(logger, "no tv libraries found", "no_libraries",
			logging.Any("libraries", r.libraries))
		return r.finish(outcome, started), nil
	}
	logger.Info("found tv libraries", logging.Int("count", len(sections)))

	for _, section := range sections {
		if ctx.Err() != nil {
			outcome.Interrupted = true
			break
		}
		outcome.Libraries++
		processed, interrupted := r.processLibrary(ctx, calls, rep, section)
		outcome.Shows += processed
		if interrupted {
			outcome.Interrupted = true
			break
		}
	}
	if outcome.Interrupted {
		logger.Info("terminating early due to interrupt")
	}
	return r.finish(outcome, started), nil
}

func (r *Runner) finish(outcome Outcome, started time.Time) Outcome {
	outcome.Duration = r.now().Sub(started)
	return outcome
}

func (r *Runner) processLibrary(ctx, calls context.Context, rep *report.Report, section plex.Section) (int, bool) {
	logger := logging.WithContext(ctx, r.logger).With(logging.Library(section.Title))
	logger.Info("processing library")

	shows, err := r.library.Shows(calls, section.Key)
	if err != nil {
		logging.WarnWithContext(logger, "listing library shows failed", "library_list_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "library is missing from the report"),
			logging.String(logging.FieldErrorHint, "check that the library is reachable in Plex"))
		return 0, false
	}
	logger.Info("found shows", logging.Int("count", len(shows)))

	processed := 0
	for _, show := range shows {
		if ctx.Err() != nil {
			return processed, true
		}
		r.processShow(calls, logger, rep, section.Title, show)
		processed++
	}
	return processed, ctx.Err() != nil
}

func (r *Runner) processShow(ctx context.Context, logger *slog.Logger, rep *report.Report, library string, show plex.Show) {
	logger = logger.With(logging.Show(show.Title))
	logger.Info("processing show", logging.Int("year", show.Year))
	rep.MarkShow(library, show.Title)

	tvdbID := show.TVDBID()
	if tvdbID != "" {
		logger.Debug("tvdb id found in plex", logging.String(logging.FieldTVDBID, tvdbID))
	}
	result, err := r.resolver.Resolve(ctx, catalog.Query{Title: show.Title, Year: show.Year, TVDBID: tvdbID})
	if err != nil {
		r.recordResolveError(logger, rep, library, show, err)
		return
	}

	episodes, err := r.library.Episodes(ctx, show.RatingKey)
	if err != nil {
		logging.WarnWithContext(logger, "fetching plex episodes failed", "episode_list_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "every episode of the show is reported missing"))
	}
	inv := r.builder.Build(ctx, episodes)

	rows := r.reconciler.Reconcile(reconcile.Show{Library: library, Title: show.Title, Year: show.Year}, result.Data, inv)
	rep.AddEpisodes(rows...)
	logger.Info("show processed",
		logging.Int("episodes", len(rows)),
		logging.Int("local_episodes", inv.Len()),
		logging.Bool("from_cache", result.FromCache))
}

func (r *Runner) recordResolveError(logger *slog.Logger, rep *report.Report, library string, show plex.Show, err error) {
	row := report.ErrorRow{Library: library, ShowTitle: show.Title, ShowYear: show.Year, Message: err.Error()}

	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		rep.AddNotFound(row)
		logger.Info("show added to not-found sheet", logging.String("reason", row.Message))
		return
	}

	rep.AddError(row)
	logging.WarnWithContext(logger, "show added to error sheet", "catalog_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "show is missing from the episodes sheet"))
}
