package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"episodegap/internal/logging"
	"episodegap/internal/services/tvdb"
)

// Catalog is the subset of the TheTVDB client the resolver needs.
type Catalog interface {
	Search(ctx context.Context, query string) ([]tvdb.SearchResult, error)
	SeriesExtended(ctx context.Context, seriesID string) (*tvdb.Series, error)
	SeasonExtended(ctx context.Context, seasonID int64) (*tvdb.Season, error)
}

// Cache stores encoded SeriesData keyed by series identifier.
type Cache interface {
	Get(id string) ([]byte, bool)
	Put(id string, payload []byte) error
}

var _ Catalog = (*tvdb.Client)(nil)

// Result is a resolved show.
type Result struct {
	TVDBID    string
	Data      *SeriesData
	FromCache bool
	// SkippedSeasons counts official seasons whose fetch failed.
	SkippedSeasons int
}

// Resolver maps library shows to catalog data.
type Resolver struct {
	catalog Catalog
	cache   Cache
	logger  *slog.Logger
}

// NewResolver builds a resolver. cache may be nil, in which case every call
// goes to the catalog.
func NewResolver(catalog Catalog, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   cache,
		logger:  logging.NewComponentLogger(logger, "catalog"),
	}
}

// Resolve returns the season and episode tree for q. Errors are either
// *NotFoundError or *CatalogError.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Result, error) {
	logger := logging.WithContext(ctx, r.logger).With(logging.Show(q.Title))

	id := strings.TrimSpace(q.TVDBID)
	if id == "" {
		logger.Info("tvdb id not known to plex, searching by title")
		found, err := r.search(ctx, q)
		if err != nil {
			return nil, err
		}
		id = found
	}
	logger = logger.With(logging.String(logging.FieldTVDBID, id))

	if data, ok := r.cached(logger, id); ok {
		logger.Info("using cached series data")
		return &Result{TVDBID: id, Data: data, FromCache: true}, nil
	}

	logger.Info("fetching series from tvdb")
	data, skipped, err := r.fetch(ctx, logger, id)
	if err != nil {
		return nil, &CatalogError{Stage: StageSeries, Title: q.Title, TVDBID: id, Err: err}
	}
	r.store(logger, id, data)
	return &Result{TVDBID: id, Data: data, SkippedSeasons: skipped}, nil
}

func (r *Resolver) search(ctx context.Context, q Query) (string, error) {
	results, err := r.catalog.Search(ctx, q.Title)
	if err != nil {
		return "", &CatalogError{Stage: StageSearch, Title: q.Title, Err: err}
	}
	best, ok := pickSearchResult(results, q.Year)
	if !ok || strings.TrimSpace(best.TVDBID) == "" {
		return "", &NotFoundError{Title: q.Title}
	}
	r.logger.Info("found tvdb match",
		logging.Show(q.Title),
		logging.String("match", best.Name),
		logging.String(logging.FieldTVDBID, best.TVDBID))
	return strings.TrimSpace(best.TVDBID), nil
}

// pickSearchResult returns the first result whose year equals year, else the
// first result.
func pickSearchResult(results []tvdb.SearchResult, year int) (tvdb.SearchResult, bool) {
	if len(results) == 0 {
		return tvdb.SearchResult{}, false
	}
	if year > 0 {
		want := strconv.Itoa(year)
		for _, result := range results {
			if result.Year.String() == want {
				return result, true
			}
		}
	}
	return results[0], true
}

func (r *Resolver) cached(logger *slog.Logger, id string) (*SeriesData, bool) {
	if r.cache == nil {
		return nil, false
	}
	payload, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	var data SeriesData
	if err := json.Unmarshal(payload, &data); err != nil {
		logging.WarnWithContext(logger, "cached series data is unreadable", "cache_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "series will be fetched from TheTVDB"),
			logging.String(logging.FieldErrorHint, "the entry is overwritten after the fetch"))
		return nil, false
	}
	return &data, true
}

func (r *Resolver) fetch(ctx context.Context, logger *slog.Logger, id string) (*SeriesData, int, error) {
	series, err := r.catalog.SeriesExtended(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if series == nil {
		return nil, 0, errors.New("empty series response")
	}

	data := &SeriesData{
		Series: SeriesInfo{
			ID:      id,
			Name:    series.Name,
			Year:    series.Year.String(),
			Seasons: make([]SeasonInfo, 0, len(series.Seasons)),
		},
	}
	skipped := 0
	for _, summary := range series.Seasons {
		seasonType := optionalString(summary.TypeName())
		data.Series.Seasons = append(data.Series.Seasons, SeasonInfo{
			ID:     summary.ID,
			Number: summary.Number,
			Type:   seasonType,
		})
		if !IsOfficialSeason(seasonType) {
			logger.Debug("skipping non-official season",
				logging.Season(summary.Number),
				logging.String("season_type", *seasonType))
			continue
		}

		logger.Info("fetching season episodes", logging.Season(summary.Number))
		season, err := r.catalog.SeasonExtended(ctx, summary.ID)
		if err != nil || season == nil {
			if err == nil {
				err = errors.New("empty season response")
			}
			skipped++
			logging.WarnWithContext(logger, "season fetch failed", "season_fetch_failed",
				logging.Season(summary.Number),
				logging.Int64("season_id", summary.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "season is omitted from the report"),
				logging.String(logging.FieldErrorHint, "rerun later or clear the cache entry for this series"))
			continue
		}
		data.Seasons = append(data.Seasons, seasonData(summary, season, seasonType))
	}
	return data, skipped, nil
}

func seasonData(summary tvdb.SeasonSummary, season *tvdb.Season, seasonType *string) SeasonData {
	name := season.Name
	if name == "" {
		name = summary.Name
	}
	episodes := make([]EpisodeData, 0, len(season.Episodes))
	for _, ep := range season.Episodes {
		episodes = append(episodes, EpisodeData{
			Number:  ep.Number,
			Name:    ep.Name,
			AirDate: strings.TrimSpace(ep.Aired),
		})
	}
	number := season.Number
	if number == 0 {
		number = summary.Number
	}
	return SeasonData{
		Number:   number,
		Name:     name,
		Type:     seasonType,
		Episodes: episodes,
	}
}

func (r *Resolver) store(logger *slog.Logger, id string, data *SeriesData) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err == nil {
		err = r.cache.Put(id, payload)
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to cache series data", "cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "series will be fetched again on the next run"),
			logging.String(logging.FieldErrorHint, "check permissions on the cache directory"))
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
