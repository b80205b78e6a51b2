package catalog

// OfficialSeasonType is TheTVDB's aired-order season type.
const OfficialSeasonType = "official"

// IsOfficialSeason reports whether a season with the given type takes part in
// reconciliation. Seasons without a type are treated as official.
func IsOfficialSeason(seasonType *string) bool {
	return seasonType == nil || *seasonType == "" || *seasonType == OfficialSeasonType
}

// SeriesData is the cached aggregate for one series.
type SeriesData struct {
	Series  SeriesInfo   `json:"series"`
	Seasons []SeasonData `json:"seasons"`
}

// SeriesInfo is the series-level record, including every season the catalog
// lists regardless of type.
type SeriesInfo struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Year    string       `json:"year,omitempty"`
	Seasons []SeasonInfo `json:"seasons"`
}

// SeasonInfo is a season entry in the series-level record.
type SeasonInfo struct {
	ID     int64   `json:"id"`
	Number int     `json:"number"`
	Type   *string `json:"type,omitempty"`
}

// OfficialSeasonCount returns how many series-level seasons are official.
func (s SeriesInfo) OfficialSeasonCount() int {
	count := 0
	for _, season := range s.Seasons {
		if IsOfficialSeason(season.Type) {
			count++
		}
	}
	return count
}

// SeasonData is one fetched season with its canonical episodes in catalog order.
type SeasonData struct {
	Number   int           `json:"number"`
	Name     string        `json:"name"`
	Type     *string       `json:"type,omitempty"`
	Episodes []EpisodeData `json:"episodes"`
}

// EpisodeData is a canonical episode. AirDate is empty when unknown.
type EpisodeData struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	AirDate string `json:"aired,omitempty"`
}

// Query identifies the show to resolve. Year is 0 and TVDBID is empty when
// unknown.
type Query struct {
	Title  string
	Year   int
	TVDBID string
}
