package report

import (
	"sort"
	"sync"
)

// Report is an append-only sink for reconciliation output.
type Report struct {
	mu       sync.Mutex
	episodes []EpisodeRow
	notFound []ErrorRow
	errs     []ErrorRow
	shows    map[string]map[string]struct{}
	order    []string
}

// New returns an empty report.
func New() *Report {
	return &Report{shows: make(map[string]map[string]struct{})}
}

// AddEpisodes appends rows to the Episodes table.
func (r *Report) AddEpisodes(rows ...EpisodeRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.episodes = append(r.episodes, rows...)
}

// AddNotFound appends a row to the TVNTF table.
func (r *Report) AddNotFound(row ErrorRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = append(r.notFound, row)
}

// AddError appends a row to the TVERR table.
func (r *Report) AddError(row ErrorRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, row)
}

// MarkShow records that a show of library was processed, whatever its outcome.
func (r *Report) MarkShow(library, show string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.shows[library]
	if !ok {
		set = make(map[string]struct{})
		r.shows[library] = set
		r.order = append(r.order, library)
	}
	set[show] = struct{}{}
}

// Episodes returns a copy of the Episodes table.
func (r *Report) Episodes() []EpisodeRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EpisodeRow(nil), r.episodes...)
}

// NotFound returns a copy of the TVNTF table.
func (r *Report) NotFound() []ErrorRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ErrorRow(nil), r.notFound...)
}

// Errors returns a copy of the TVERR table.
func (r *Report) Errors() []ErrorRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ErrorRow(nil), r.errs...)
}

// LibrarySummary rolls up one library.
type LibrarySummary struct {
	Library    string
	Shows      int
	Episodes   int
	Missing    int
	Duplicates int
	NotFound   int
	Errors     int
}

// Summary returns one entry per library in first-seen order, followed by any
// library that only appears in the error tables, sorted by name.
func (r *Report) Summary() []LibrarySummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	byLibrary := make(map[string]*LibrarySummary)
	order := append([]string(nil), r.order...)
	get := func(library string) *LibrarySummary {
		if s, ok := byLibrary[library]; ok {
			return s
		}
		s := &LibrarySummary{Library: library}
		byLibrary[library] = s
		return s
	}
	for _, library := range order {
		get(library).Shows = len(r.shows[library])
	}
	for _, row := range r.episodes {
		s := get(row.Library)
		s.Episodes++
		if row.Missing {
			s.Missing++
		}
		if row.Duplicate {
			s.Duplicates++
		}
	}
	for _, row := range r.notFound {
		get(row.Library).NotFound++
	}
	for _, row := range r.errs {
		get(row.Library).Errors++
	}

	seen := make(map[string]struct{}, len(order))
	for _, library := range order {
		seen[library] = struct{}{}
	}
	var extra []string
	for library := range byLibrary {
		if _, ok := seen[library]; !ok {
			extra = append(extra, library)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := make([]LibrarySummary, 0, len(order))
	for _, library := range order {
		out = append(out, *byLibrary[library])
	}
	return out
}
