package catalog

import "fmt"

// NotFoundError reports that a title search returned no series.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return "Not found on TVDB"
}

// Stage identifies where a catalog failure happened.
type Stage string

const (
	StageSearch Stage = "search"
	StageSeries Stage = "api"
)

// CatalogError wraps a network or API failure while searching or fetching a
// series. It is terminal for the show but not for the run.
type CatalogError struct {
	Stage  Stage
	Title  string
	TVDBID string
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Stage == StageSearch {
		return fmt.Sprintf("TVDB search error: %v", e.Err)
	}
	return fmt.Sprintf("TVDB API error: %v", e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }
