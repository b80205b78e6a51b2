package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// PlexShow is a show served by FakePlex.
type PlexShow struct {
	RatingKey string
	Title     string
	Year      int
	TVDBID    string
	Episodes  []PlexEpisode
}

// PlexEpisode is an episode served by FakePlex. Files become media parts.
type PlexEpisode struct {
	RatingKey string
	Season    int
	Episode   int
	Title     string
	Files     []string
}

// PlexLibrary is a TV section served by FakePlex.
type PlexLibrary struct {
	Key   string
	Title string
	Shows []PlexShow
}

// FakePlex serves the subset of the Plex JSON API episodegap reads.
type FakePlex struct {
	Token     string
	Libraries []PlexLibrary
	// FailEpisodes lists show rating keys whose episode listing returns 500.
	FailEpisodes map[string]bool
}

// Start serves f on an httptest server closed at test cleanup.
func (f *FakePlex) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakePlex) serve(w http.ResponseWriter, r *http.Request) {
	if f.Token != "" && r.Header.Get("X-Plex-Token") != f.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	path := r.URL.Path
	switch {
	case path == "/identity":
		writeJSON(w, map[string]any{"MediaContainer": map[string]any{"machineIdentifier": "fake", "version": "1.40.0"}})
	case path == "/library/sections":
		dirs := make([]map[string]any, 0, len(f.Libraries))
		for _, lib := range f.Libraries {
			dirs = append(dirs, map[string]any{"key": lib.Key, "title": lib.Title, "type": "show"})
		}
		writeJSON(w, container(map[string]any{"Directory": dirs}))
	case strings.HasPrefix(path, "/library/sections/") && strings.HasSuffix(path, "/all"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "/library/sections/"), "/all")
		for _, lib := range f.Libraries {
			if lib.Key != key {
				continue
			}
			shows := make([]map[string]any, 0, len(lib.Shows))
			for _, show := range lib.Shows {
				entry := map[string]any{"ratingKey": show.RatingKey, "title": show.Title, "year": show.Year}
				if show.TVDBID != "" {
					entry["Guid"] = []map[string]any{{"id": "tvdb://" + show.TVDBID}}
				}
				shows = append(shows, entry)
			}
			writeJSON(w, container(map[string]any{"Metadata": shows}))
			return
		}
		http.NotFound(w, r)
	case strings.HasPrefix(path, "/library/metadata/") && strings.HasSuffix(path, "/allLeaves"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "/library/metadata/"), "/allLeaves")
		if f.FailEpisodes[key] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		show, ok := f.show(key)
		if !ok {
			http.NotFound(w, r)
			return
		}
		leaves := make([]map[string]any, 0, len(show.Episodes))
		for _, ep := range show.Episodes {
			leaves = append(leaves, episodeJSON(ep))
		}
		writeJSON(w, container(map[string]any{"Metadata": leaves}))
	case strings.HasPrefix(path, "/library/metadata/"):
		key := strings.TrimPrefix(path, "/library/metadata/")
		for _, lib := range f.Libraries {
			for _, show := range lib.Shows {
				for _, ep := range show.Episodes {
					if ep.RatingKey == key {
						writeJSON(w, container(map[string]any{"Metadata": []map[string]any{episodeJSON(ep)}}))
						return
					}
				}
			}
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakePlex) show(ratingKey string) (PlexShow, bool) {
	for _, lib := range f.Libraries {
		for _, show := range lib.Shows {
			if show.RatingKey == ratingKey {
				return show, true
			}
		}
	}
	return PlexShow{}, false
}

func episodeJSON(ep PlexEpisode) map[string]any {
	parts := make([]map[string]any, 0, len(ep.Files))
	for _, file := range ep.Files {
		parts = append(parts, map[string]any{"file": file})
	}
	entry := map[string]any{
		"ratingKey":   ep.RatingKey,
		"title":       ep.Title,
		"parentIndex": ep.Season,
		"index":       ep.Episode,
	}
	if len(parts) > 0 {
		entry["Media"] = []map[string]any{{"Part": parts}}
	}
	return entry
}

// TVDBSeries is a series served by FakeTVDB.
type TVDBSeries struct {
	ID      string
	Name    string
	Year    string
	Seasons []TVDBSeason
}

// TVDBSeason is a season served by FakeTVDB. Type "" omits the season type.
type TVDBSeason struct {
	ID       int64
	Number   int
	Name     string
	Type     string
	Episodes []TVDBEpisode
	Fail     bool
}

// TVDBEpisode is a canonical episode served by FakeTVDB.
type TVDBEpisode struct {
	Number int
	Name   string
	Aired  string
}

// FakeTVDB serves the subset of the TheTVDB v4 API episodegap reads.
type FakeTVDB struct {
	APIKey string
	Series []TVDBSeries
	// Search maps a query to the series IDs returned, in order. Queries not
	// listed return no results.
	Search map[string][]string

	mu    sync.Mutex
	calls map[string]int
}

// Start serves f on an httptest server closed at test cleanup.
func (f *FakeTVDB) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return srv
}

// Calls returns how many requests hit the endpoint group ("login", "search",
// "series", "season").
func (f *FakeTVDB) Calls(group string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[group]
}

func (f *FakeTVDB) count(group string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[group]++
}

const fakeTVDBToken = "fake-bearer"

func (f *FakeTVDB) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/login" {
		f.count("login")
		var body struct {
			APIKey string `json:"apikey"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.APIKey != "" && body.APIKey != f.APIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, envelope(map[string]any{"token": fakeTVDBToken}))
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+fakeTVDBToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch {
	case path == "/search":
		f.count("search")
		results := []map[string]any{}
		for _, id := range f.Search[r.URL.Query().Get("query")] {
			if series, ok := f.series(id); ok {
				results = append(results, map[string]any{"tvdb_id": series.ID, "name": series.Name, "year": series.Year})
			}
		}
		writeJSON(w, envelope(results))
	case strings.HasPrefix(path, "/series/") && strings.HasSuffix(path, "/extended"):
		f.count("series")
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/series/"), "/extended")
		series, ok := f.series(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		seasons := make([]map[string]any, 0, len(series.Seasons))
		for _, s := range series.Seasons {
			entry := map[string]any{"id": s.ID, "number": s.Number, "name": s.Name}
			if s.Type != "" {
				entry["type"] = map[string]any{"type": s.Type}
			}
			seasons = append(seasons, entry)
		}
		writeJSON(w, envelope(map[string]any{"id": numericID(series.ID), "name": series.Name, "year": series.Year, "seasons": seasons}))
	case strings.HasPrefix(path, "/seasons/") && strings.HasSuffix(path, "/extended"):
		f.count("season")
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/seasons/"), "/extended")
		for _, series := range f.Series {
			for _, s := range series.Seasons {
				if strconv.FormatInt(s.ID, 10) != id {
					continue
				}
				if s.Fail {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				episodes := make([]map[string]any, 0, len(s.Episodes))
				for _, ep := range s.Episodes {
					episodes = append(episodes, map[string]any{"number": ep.Number, "name": ep.Name, "aired": ep.Aired})
				}
				writeJSON(w, envelope(map[string]any{"id": s.ID, "number": s.Number, "name": s.Name, "episodes": episodes}))
				return
			}
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeTVDB) series(id string) (TVDBSeries, bool) {
	for _, series := range f.Series {
		if series.ID == id {
			return series, true
		}
	}
	return TVDBSeries{}, false
}

func numericID(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}

func container(body map[string]any) map[string]any {
	return map[string]any{"MediaContainer": body}
}

func envelope(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
