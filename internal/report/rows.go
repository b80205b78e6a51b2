package report

// Sheet names.
const (
	SheetEpisodes = "Episodes"
	SheetNotFound = "TVNTF"
	SheetErrors   = "TVERR"
)

// EpisodeHeaders are the Episodes sheet columns in order.
var EpisodeHeaders = []string{
	"Plex Library Title",
	"TV Show Title",
	"TV Show Year",
	"Number of Seasons",
	"Season Number",
	"Season Title",
	"Number of Episodes",
	"Episode Number",
	"Episode Aired Date",
	"Is Plex Missing",
	"Is Plex Duplicate",
	"Episode Title",
	"File on Disk",
}

// ErrorHeaders are the TVNTF and TVERR sheet columns in order.
var ErrorHeaders = []string{
	"Plex Library Title",
	"TV Show Title",
	"TV Show Year",
	"Error Details",
}

// EpisodeRow is one canonical episode and its local status. ShowYear is 0
// when Plex reports no year; FilePath joins every copy with newlines.
type EpisodeRow struct {
	Library      string
	ShowTitle    string
	ShowYear     int
	SeasonCount  int
	SeasonNumber int
	SeasonName   string
	EpisodeCount int
	Episode      int
	AirDate      string
	Missing      bool
	Duplicate    bool
	EpisodeTitle string
	FilePath     string
}

func (r EpisodeRow) cells() []any {
	return []any{
		r.Library,
		r.ShowTitle,
		yearCell(r.ShowYear),
		r.SeasonCount,
		r.SeasonNumber,
		r.SeasonName,
		r.EpisodeCount,
		r.Episode,
		r.AirDate,
		r.Missing,
		r.Duplicate,
		r.EpisodeTitle,
		r.FilePath,
	}
}

// ErrorRow records a show that produced no episode rows.
type ErrorRow struct {
	Library   string
	ShowTitle string
	ShowYear  int
	Message   string
}

func (r ErrorRow) cells() []any {
	return []any{r.Library, r.ShowTitle, yearCell(r.ShowYear), r.Message}
}

func yearCell(year int) any {
	if year <= 0 {
		return ""
	}
	return year
}
