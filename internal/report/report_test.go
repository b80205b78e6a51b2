package report_test

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"episodegap/internal/report"
)

func sampleReport() *report.Report {
	r := report.New()
	r.MarkShow("TV Shows", "Breaking Bad")
	r.AddEpisodes(
		report.EpisodeRow{
			Library: "TV Shows", ShowTitle: "Breaking Bad", ShowYear: 2008,
			SeasonCount: 5, SeasonNumber: 1, SeasonName: "Season 1", EpisodeCount: 7,
			Episode: 1, AirDate: "2008-01-20", EpisodeTitle: "Pilot",
			FilePath: "/media/bb/s01e01.mkv",
		},
		report.EpisodeRow{
			Library: "TV Shows", ShowTitle: "Breaking Bad", ShowYear: 2008,
			SeasonCount: 5, SeasonNumber: 1, SeasonName: "Season 1", EpisodeCount: 7,
			Episode: 2, EpisodeTitle: "Cat's in the Bag...", Missing: true,
		},
	)
	r.MarkShow("TV Shows", "Unknown Show")
	r.AddNotFound(report.ErrorRow{Library: "TV Shows", ShowTitle: "Unknown Show", Message: "Not found on TVDB"})
	r.MarkShow("Anime", "Broken")
	r.AddError(report.ErrorRow{Library: "Anime", ShowTitle: "Broken", ShowYear: 1999, Message: "TVDB API error: boom"})
	r.AddError(report.ErrorRow{Library: "Anime", ShowTitle: "Broken Again", Message: "TVDB search error: boom"})
	return r
}

func TestSaveWritesAllSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	if err := sampleReport().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	want := []string{report.SheetEpisodes, report.SheetNotFound, report.SheetErrors}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", sheets, want)
		}
	}

	rows, err := book.GetRows(report.SheetEpisodes)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("episode rows = %d, want 3 (header + 2)", len(rows))
	}
	for i, h := range report.EpisodeHeaders {
		if rows[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	if got, _ := book.GetCellValue(report.SheetEpisodes, "C2"); got != "2008" {
		t.Fatalf("year cell = %q, want 2008", got)
	}
	if got, _ := book.GetCellValue(report.SheetEpisodes, "M2"); got != "/media/bb/s01e01.mkv" {
		t.Fatalf("file cell = %q", got)
	}
	if got, _ := book.GetCellValue(report.SheetEpisodes, "M3"); got != "" {
		t.Fatalf("missing file cell = %q, want empty", got)
	}
	kind, err := book.GetCellType(report.SheetEpisodes, "J3")
	if err != nil {
		t.Fatalf("GetCellType: %v", err)
	}
	if kind != excelize.CellTypeBool {
		t.Fatalf("missing flag cell type = %v, want bool", kind)
	}

	notFound, err := book.GetRows(report.SheetNotFound)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(notFound) != 2 || notFound[1][3] != "Not found on TVDB" {
		t.Fatalf("not-found rows = %v", notFound)
	}
	if got, _ := book.GetCellValue(report.SheetNotFound, "C2"); got != "" {
		t.Fatalf("unknown year cell = %q, want empty", got)
	}

	errRows, err := book.GetRows(report.SheetErrors)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(errRows) != 3 {
		t.Fatalf("error rows = %d, want header + 2 appended rows", len(errRows))
	}
	if errRows[1][1] != "Broken" || errRows[2][1] != "Broken Again" {
		t.Fatalf("error rows not appended in order: %v", errRows)
	}
}

func TestSaveFormatsHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := report.New().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer book.Close()

	for _, sheet := range []string{report.SheetEpisodes, report.SheetNotFound, report.SheetErrors} {
		panes, err := book.GetPanes(sheet)
		if err != nil {
			t.Fatalf("GetPanes(%s): %v", sheet, err)
		}
		if !panes.Freeze || panes.YSplit != 1 {
			t.Fatalf("%s panes = %+v, want frozen header row", sheet, panes)
		}
		styleID, err := book.GetCellStyle(sheet, "A1")
		if err != nil {
			t.Fatalf("GetCellStyle(%s): %v", sheet, err)
		}
		style, err := book.GetStyle(styleID)
		if err != nil {
			t.Fatalf("GetStyle: %v", err)
		}
		if style.Font == nil || !style.Font.Bold {
			t.Fatalf("%s header not bold", sheet)
		}
	}
}

func TestSummaryPerLibrary(t *testing.T) {
	r := sampleReport()
	r.AddEpisodes(report.EpisodeRow{Library: "TV Shows", ShowTitle: "Breaking Bad", Episode: 3, Duplicate: true})

	got := r.Summary()
	if len(got) != 2 {
		t.Fatalf("summary = %+v, want 2 libraries", got)
	}
	tv := got[0]
	if tv.Library != "TV Shows" || tv.Shows != 2 || tv.Episodes != 3 || tv.Missing != 1 || tv.Duplicates != 1 || tv.NotFound != 1 {
		t.Fatalf("TV Shows summary = %+v", tv)
	}
	anime := got[1]
	if anime.Library != "Anime" || anime.Shows != 1 || anime.Errors != 2 || anime.Episodes != 0 {
		t.Fatalf("Anime summary = %+v", anime)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	r := report.New()
	r.AddEpisodes(report.EpisodeRow{ShowTitle: "A"})
	rows := r.Episodes()
	rows[0].ShowTitle = "changed"
	if r.Episodes()[0].ShowTitle != "A" {
		t.Fatal("Episodes exposed internal slice")
	}
}
