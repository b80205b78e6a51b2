package tvdb

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SearchResult is one hit from the series search endpoint.
type SearchResult struct {
	TVDBID string `json:"tvdb_id"`
	Name   string `json:"name"`
	Year   Year   `json:"year"`
}

// SeasonType is the ordering a season belongs to. "official" is the aired order.
type SeasonType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SeasonSummary is a season as listed inside an extended series record.
type SeasonSummary struct {
	ID     int64       `json:"id"`
	Number int         `json:"number"`
	Name   string      `json:"name"`
	Type   *SeasonType `json:"type"`
}

// TypeName returns the season type string, or "" when the record carries none.
func (s SeasonSummary) TypeName() string {
	if s.Type == nil {
		return ""
	}
	return s.Type.Type
}

// Series is the extended series record.
type Series struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Year    Year            `json:"year"`
	Seasons []SeasonSummary `json:"seasons"`
}

// Episode is one canonical episode inside an extended season record.
type Episode struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Aired  string `json:"aired"`
}

// Season is the extended season record.
type Season struct {
	ID       int64       `json:"id"`
	Number   int         `json:"number"`
	Name     string      `json:"name"`
	Type     *SeasonType `json:"type"`
	Episodes []Episode   `json:"episodes"`
}

// Year is a year that TheTVDB encodes as either a JSON string or number.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = Year(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}

// String returns the year as text.
func (y Year) String() string { return string(y) }

// Int returns the year as a number, or 0 when it is absent or malformed.
func (y Year) Int() int {
	n, err := strconv.Atoi(string(y))
	if err != nil {
		return 0
	}
	return n
}
