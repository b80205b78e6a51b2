package tvdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"episodegap/internal/services"
	"episodegap/internal/services/tvdb"
)

type fakeTVDB struct {
	t      *testing.T
	logins atomic.Int32
	routes map[string]string
}

func (f *fakeTVDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/login" {
		f.logins.Add(1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decode login body: %v", err)
		}
		if body["apikey"] != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"failure","message":"Unauthorized"}`))
			return
		}
		if body["pin"] != "4321" {
			f.t.Errorf("expected pin in login body, got %v", body)
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{"token":"bearer-1"}}`))
		return
	}
	if got := r.Header.Get("Authorization"); got != "Bearer bearer-1" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	body, ok := f.routes[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"failure","message":"NotFoundException"}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func newClient(t *testing.T, routes map[string]string) (*tvdb.Client, *fakeTVDB) {
	t.Helper()
	fake := &fakeTVDB{t: t, routes: routes}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	client, err := tvdb.New("key", "4321", server.URL+"/", tvdb.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client, fake
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tvdb.New(" ", "", "https://api4.thetvdb.com/v4"); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := tvdb.New("key", "", ""); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestSearchLogsInOnceAndParsesYears(t *testing.T) {
	client, fake := newClient(t, map[string]string{
		"/search": `{"status":"success","data":[
			{"tvdb_id":"81189","name":"Breaking Bad","year":"2008"},
			{"tvdb_id":"999","name":"Breaking Bad (Remake)","year":2030},
			{"tvdb_id":"1000","name":"Unknown","year":null}
		]}`,
	})

	results, err := client.Search(context.Background(), "Breaking Bad")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].TVDBID != "81189" || results[0].Year.Int() != 2008 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Year.String() != "2030" {
		t.Fatalf("expected numeric year decoded, got %q", results[1].Year)
	}
	if results[2].Year.Int() != 0 {
		t.Fatalf("expected empty year, got %q", results[2].Year)
	}

	if _, err := client.Search(context.Background(), "Breaking Bad"); err != nil {
		t.Fatalf("second Search returned error: %v", err)
	}
	if got := fake.logins.Load(); got != 1 {
		t.Fatalf("expected a single login, got %d", got)
	}
}

func TestSeriesAndSeasonExtended(t *testing.T) {
	client, _ := newClient(t, map[string]string{
		"/series/81189/extended": `{"status":"success","data":{"id":81189,"name":"Breaking Bad","year":"2008","seasons":[
			{"id":30272,"number":0,"type":{"id":1,"name":"Aired Order","type":"official"}},
			{"id":30273,"number":1,"type":{"id":1,"name":"Aired Order","type":"official"}},
			{"id":50000,"number":1,"type":{"id":2,"name":"DVD Order","type":"dvd"}},
			{"id":50001,"number":2}
		]}}`,
		"/seasons/30273/extended": `{"status":"success","data":{"id":30273,"number":1,"episodes":[
			{"id":1,"number":1,"name":"Pilot","aired":"2008-01-20"},
			{"id":2,"number":2,"name":"Cat's in the Bag...","aired":null}
		]}}`,
	})

	series, err := client.SeriesExtended(context.Background(), "81189")
	if err != nil {
		t.Fatalf("SeriesExtended returned error: %v", err)
	}
	if series.Name != "Breaking Bad" || len(series.Seasons) != 4 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if series.Seasons[2].TypeName() != "dvd" || series.Seasons[3].TypeName() != "" {
		t.Fatalf("unexpected season types: %q %q", series.Seasons[2].TypeName(), series.Seasons[3].TypeName())
	}

	season, err := client.SeasonExtended(context.Background(), 30273)
	if err != nil {
		t.Fatalf("SeasonExtended returned error: %v", err)
	}
	if len(season.Episodes) != 2 || season.Episodes[0].Name != "Pilot" || season.Episodes[1].Aired != "" {
		t.Fatalf("unexpected season: %+v", season)
	}
}

func TestStatusErrorsAreClassified(t *testing.T) {
	client, _ := newClient(t, map[string]string{})
	_, err := client.SeriesExtended(context.Background(), "1")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}

	server := httptest.NewServer(&fakeTVDB{t: t})
	defer server.Close()
	bad, err := tvdb.New("wrong", "", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := bad.Login(context.Background()); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized marker, got %v", err)
	}
}
