package runner

import (
	"context"
	"errors"
	"testing"

	"episodegap/internal/catalog"
	"episodegap/internal/inventory"
	"episodegap/internal/logging"
	"episodegap/internal/report"
	"episodegap/internal/services/plex"
)

type fakeLibrary struct {
	sections    []plex.Section
	sectionsErr error
	shows       map[string][]plex.Show
	showsErr    map[string]error
	episodes    map[string][]plex.Episode
	episodesErr map[string]error
}

func (f *fakeLibrary) ShowSections(context.Context, []string) ([]plex.Section, error) {
	return f.sections, f.sectionsErr
}

func (f *fakeLibrary) Shows(_ context.Context, key string) ([]plex.Show, error) {
	if err := f.showsErr[key]; err != nil {
		return nil, err
	}
	return f.shows[key], nil
}

func (f *fakeLibrary) Episodes(_ context.Context, key string) ([]plex.Episode, error) {
	if err := f.episodesErr[key]; err != nil {
		return nil, err
	}
	return f.episodes[key], nil
}

type fakeResolver struct {
	results map[string]*catalog.Result
	errs    map[string]error
	queries []catalog.Query
	onCall  func(ctx context.Context)
}

func (f *fakeResolver) Resolve(ctx context.Context, q catalog.Query) (*catalog.Result, error) {
	f.queries = append(f.queries, q)
	if f.onCall != nil {
		f.onCall(ctx)
	}
	if err := f.errs[q.Title]; err != nil {
		return nil, err
	}
	if result, ok := f.results[q.Title]; ok {
		return result, nil
	}
	return nil, &catalog.NotFoundError{Title: q.Title}
}

type fakeAuth struct {
	err   error
	calls int
}

func (f *fakeAuth) Login(context.Context) error {
	f.calls++
	return f.err
}

type noParts struct{}

func (noParts) EpisodeFiles(context.Context, string) ([]string, error) {
	return nil, errors.New("unexpected part lookup")
}

func oneSeason(episodes ...string) *catalog.Result {
	eps := make([]catalog.EpisodeData, 0, len(episodes))
	for i, name := range episodes {
		eps = append(eps, catalog.EpisodeData{Number: i + 1, Name: name})
	}
	return &catalog.Result{
		TVDBID: "100",
		Data: &catalog.SeriesData{
			Series:  catalog.SeriesInfo{ID: "100", Seasons: []catalog.SeasonInfo{{ID: 1, Number: 1}}},
			Seasons: []catalog.SeasonData{{Number: 1, Name: "Season 1", Episodes: eps}},
		},
	}
}

func newTestRunner(lib *fakeLibrary, res *fakeResolver, opts ...Option) *Runner {
	logger := logging.NewNop()
	return New(lib, res, inventory.NewBuilder(noParts{}, logger), logger, opts...)
}

func TestRunReconcilesShowsAcrossLibraries(t *testing.T) {
	lib := &fakeLibrary{
		sections: []plex.Section{{Key: "1", Title: "TV Shows", Type: "show"}, {Key: "2", Title: "Kids", Type: "show"}},
		shows: map[string][]plex.Show{
			"1": {{RatingKey: "10", Title: "Alpha", Year: 2010, GUIDs: []string{"tvdb://100"}}},
			"2": {{RatingKey: "20", Title: "Beta", Year: 2015}},
		},
		episodes: map[string][]plex.Episode{
			"10": {{RatingKey: "11", SeasonNumber: 1, EpisodeNumber: 1, Files: []string{"/media/alpha/s01e01.mkv"}}},
			"20": {
				{RatingKey: "21", SeasonNumber: 1, EpisodeNumber: 1, Files: []string{"/media/beta/a.mkv", "/media/beta/b.mkv"}},
				{RatingKey: "22", SeasonNumber: 1, EpisodeNumber: 2, Files: []string{"/media/beta/s01e02.mkv"}},
			},
		},
	}
	res := &fakeResolver{results: map[string]*catalog.Result{
		"Alpha": oneSeason("Pilot", "Second"),
		"Beta":  oneSeason("One", "Two"),
	}}
	auth := &fakeAuth{}
	rep := report.New()

	outcome, err := newTestRunner(lib, res, WithAuthenticator(auth)).Run(context.Background(), rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if auth.calls != 1 {
		t.Fatalf("login calls = %d, want 1", auth.calls)
	}
	if outcome.Libraries != 2 || outcome.Shows != 2 || outcome.Interrupted {
		t.Fatalf("outcome = %+v", outcome)
	}
	if res.queries[0].TVDBID != "100" || res.queries[0].Year != 2010 || res.queries[1].TVDBID != "" {
		t.Fatalf("queries = %+v", res.queries)
	}

	rows := rep.Episodes()
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0].Missing || !rows[1].Missing {
		t.Fatalf("Alpha rows = %+v", rows[:2])
	}
	if !rows[2].Duplicate || rows[2].FilePath != "/media/beta/a.mkv\n/media/beta/b.mkv" {
		t.Fatalf("Beta duplicate row = %+v", rows[2])
	}
	if rows[3].Library != "Kids" || rows[3].Missing {
		t.Fatalf("Beta second row = %+v", rows[3])
	}
}

func TestRunClassifiesResolveErrors(t *testing.T) {
	lib := &fakeLibrary{
		sections: []plex.Section{{Key: "1", Title: "TV Shows", Type: "show"}},
		shows: map[string][]plex.Show{"1": {
			{RatingKey: "1", Title: "Missing Show", Year: 1999},
			{RatingKey: "2", Title: "Flaky Show"},
			{RatingKey: "3", Title: "Good Show"},
		}},
		episodes: map[string][]plex.Episode{},
	}
	res := &fakeResolver{
		results: map[string]*catalog.Result{"Good Show": oneSeason("Pilot")},
		errs: map[string]error{
			"Flaky Show": &catalog.CatalogError{Stage: catalog.StageSearch, Title: "Flaky Show", Err: errors.New("timeout")},
		},
	}
	rep := report.New()

	if _, err := newTestRunner(lib, res).Run(context.Background(), rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	notFound := rep.NotFound()
	if len(notFound) != 1 || notFound[0].ShowTitle != "Missing Show" || notFound[0].Message != "Not found on TVDB" || notFound[0].ShowYear != 1999 {
		t.Fatalf("not found rows = %+v", notFound)
	}
	errs := rep.Errors()
	if len(errs) != 1 || errs[0].ShowTitle != "Flaky Show" || errs[0].Message != "TVDB search error: timeout" {
		t.Fatalf("error rows = %+v", errs)
	}
	rows := rep.Episodes()
	if len(rows) != 1 || rows[0].ShowTitle != "Good Show" || !rows[0].Missing {
		t.Fatalf("episode rows = %+v", rows)
	}
}

func TestRunEpisodeListingFailureReportsAllMissing(t *testing.T) {
	lib := &fakeLibrary{
		sections:    []plex.Section{{Key: "1", Title: "TV Shows", Type: "show"}},
		shows:       map[string][]plex.Show{"1": {{RatingKey: "1", Title: "Alpha"}}},
		episodesErr: map[string]error{"1": errors.New("plex down")},
	}
	res := &fakeResolver{results: map[string]*catalog.Result{"Alpha": oneSeason("Pilot", "Second")}}
	rep := report.New()

	if _, err := newTestRunner(lib, res).Run(context.Background(), rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows := rep.Episodes()
	if len(rows) != 2 || !rows[0].Missing || !rows[1].Missing {
		t.Fatalf("rows = %+v, want two missing rows", rows)
	}
}

func TestRunSkipsLibraryWhoseListingFails(t *testing.T) {
	lib := &fakeLibrary{
		sections: []plex.Section{{Key: "1", Title: "Broken"}, {Key: "2", Title: "Working"}},
		showsErr: map[string]error{"1": errors.New("boom")},
		shows:    map[string][]plex.Show{"2": {{RatingKey: "5", Title: "Alpha"}}},
	}
	res := &fakeResolver{results: map[string]*catalog.Result{"Alpha": oneSeason("Pilot")}}
	rep := report.New()

	outcome, err := newTestRunner(lib, res).Run(context.Background(), rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Libraries != 2 || outcome.Shows != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(rep.Episodes()) != 1 {
		t.Fatalf("rows = %+v", rep.Episodes())
	}
}

func TestRunAbortsOnTopLevelFailures(t *testing.T) {
	tests := []struct {
		name string
		lib  *fakeLibrary
		auth *fakeAuth
	}{
		{
			name: "tvdb login",
			lib:  &fakeLibrary{sections: []plex.Section{{Key: "1", Title: "TV"}}},
			auth: &fakeAuth{err: errors.New("unauthorized")},
		},
		{
			name: "plex sections",
			lib:  &fakeLibrary{sectionsErr: errors.New("connection refused")},
			auth: &fakeAuth{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &fakeResolver{}
			rep := report.New()
			_, err := newTestRunner(tt.lib, res, WithAuthenticator(tt.auth)).Run(context.Background(), rep)
			if err == nil {
				t.Fatal("expected error")
			}
			if len(res.queries) != 0 {
				t.Fatalf("resolver called %d times after top-level failure", len(res.queries))
			}
		})
	}
}

func TestRunInterruptFinishesCurrentShow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib := &fakeLibrary{
		sections: []plex.Section{{Key: "1", Title: "TV"}, {Key: "2", Title: "More"}},
		shows: map[string][]plex.Show{
			"1": {{RatingKey: "1", Title: "First"}, {RatingKey: "2", Title: "Second"}},
			"2": {{RatingKey: "3", Title: "Third"}},
		},
	}
	var callCtxErr error
	res := &fakeResolver{
		results: map[string]*catalog.Result{"First": oneSeason("Pilot"), "Second": oneSeason("Pilot")},
		onCall: func(callCtx context.Context) {
			cancel()
			callCtxErr = callCtx.Err()
		},
	}
	rep := report.New()

	outcome, err := newTestRunner(lib, res).Run(ctx, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Interrupted {
		t.Fatal("expected interrupted outcome")
	}
	if callCtxErr != nil {
		t.Fatalf("collaborator call saw cancellation: %v", callCtxErr)
	}
	if len(res.queries) != 1 || res.queries[0].Title != "First" {
		t.Fatalf("queries = %+v, want only First", res.queries)
	}
	if rows := rep.Episodes(); len(rows) != 1 || rows[0].ShowTitle != "First" {
		t.Fatalf("rows = %+v, want First completed", rows)
	}
}

func TestRunNoLibraries(t *testing.T) {
	outcome, err := newTestRunner(&fakeLibrary{}, &fakeResolver{}).Run(context.Background(), report.New())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Libraries != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestRunRequiresReport(t *testing.T) {
	if _, err := newTestRunner(&fakeLibrary{}, &fakeResolver{}).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil report")
	}
}
