package reconcile

import (
	"log/slog"
	"strings"

	"episodegap/internal/catalog"
	"episodegap/internal/inventory"
	"episodegap/internal/logging"
	"episodegap/internal/report"
)

// Show identifies the local show being reconciled. Year is 0 when unknown.
type Show struct {
	Library string
	Title   string
	Year    int
}

// Reconciler turns catalog data and an inventory into report rows.
type Reconciler struct {
	logger *slog.Logger
}

// New constructs a Reconciler.
func New(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logging.NewComponentLogger(logger, "reconcile")}
}

// Reconcile returns one row per canonical episode of data's official seasons.
// A nil inventory reports every episode missing.
func (r *Reconciler) Reconcile(show Show, data *catalog.SeriesData, inv *inventory.Inventory) []report.EpisodeRow {
	if data == nil {
		return nil
	}
	seasonCount := data.Series.OfficialSeasonCount()
	logger := r.logger.With(logging.Library(show.Library), logging.Show(show.Title))

	var rows []report.EpisodeRow
	for _, season := range data.Seasons {
		if !catalog.IsOfficialSeason(season.Type) {
			continue
		}
		if len(season.Episodes) == 0 {
			logger.Info("skipping season without episodes", logging.Season(season.Number))
			continue
		}
		for _, episode := range season.Episodes {
			row := report.EpisodeRow{
				Library:      show.Library,
				ShowTitle:    show.Title,
				ShowYear:     show.Year,
				SeasonCount:  seasonCount,
				SeasonNumber: season.Number,
				SeasonName:   season.Name,
				EpisodeCount: len(season.Episodes),
				Episode:      episode.Number,
				AirDate:      episode.AirDate,
				EpisodeTitle: episode.Name,
			}
			record, count, ok := inv.Lookup(season.Number, episode.Number)
			if !ok {
				row.Missing = true
			} else {
				row.Duplicate = count > 1
				row.FilePath = strings.Join(record.FilePaths, "\n")
			}
			rows = append(rows, row)
		}
	}

	missing := 0
	for _, row := range rows {
		if row.Missing {
			missing++
		}
	}
	logger.Debug("show reconciled",
		logging.Int("episodes", len(rows)),
		logging.Int("missing", missing),
		logging.Int("official_seasons", seasonCount),
	)
	return rows
}
