package inventory_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"episodegap/internal/inventory"
	"episodegap/internal/services/plex"
)

type stubParts struct {
	files map[string][]string
	errs  map[string]error
	calls []string
}

func (s *stubParts) EpisodeFiles(_ context.Context, key string) ([]string, error) {
	s.calls = append(s.calls, key)
	if err := s.errs[key]; err != nil {
		return nil, err
	}
	return s.files[key], nil
}

func TestBuildSingleCopy(t *testing.T) {
	builder := inventory.NewBuilder(nil, nil)
	inv := builder.Build(context.Background(), []plex.Episode{
		{RatingKey: "1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", Files: []string{"/media/s01e01.mkv"}},
	})
	record, count, ok := inv.Lookup(1, 1)
	if !ok {
		t.Fatal("expected record for S01E01")
	}
	if count != 1 || record.Title != "Pilot" || len(record.FilePaths) != 1 || record.FilePaths[0] != "/media/s01e01.mkv" {
		t.Fatalf("unexpected record %+v count=%d", record, count)
	}
	if _, _, ok := inv.Lookup(1, 2); ok {
		t.Fatal("expected no record for S01E02")
	}
}

func TestBuildDuplicatesAppendPaths(t *testing.T) {
	builder := inventory.NewBuilder(nil, nil)
	inv := builder.Build(context.Background(), []plex.Episode{
		{RatingKey: "1", SeasonNumber: 2, EpisodeNumber: 5, Title: "First", Files: []string{"/tv/a.mkv", "/tv/b.mkv"}},
		{RatingKey: "2", SeasonNumber: 2, EpisodeNumber: 5, Title: "Second", Files: []string{"/tv/c.mp4"}},
	})
	record, count, ok := inv.Lookup(2, 5)
	if !ok {
		t.Fatal("expected record")
	}
	if count != 3 {
		t.Fatalf("expected 3 copies, got %d", count)
	}
	if record.Title != "First" {
		t.Fatalf("expected first occurrence to be kept, got %q", record.Title)
	}
	want := []string{"/tv/a.mkv", "/tv/b.mkv", "/tv/c.mp4"}
	for i, path := range want {
		if record.FilePaths[i] != path {
			t.Fatalf("unexpected paths %v", record.FilePaths)
		}
	}
	if inv.Len() != 1 {
		t.Fatalf("expected one distinct episode, got %d", inv.Len())
	}
}

func TestBuildFetchesMissingParts(t *testing.T) {
	parts := &stubParts{
		files: map[string][]string{"20": {"/tv/s01e02.mkv"}},
		errs:  map[string]error{"30": errors.New("timeout")},
	}
	builder := inventory.NewBuilder(parts, nil)
	inv := builder.Build(context.Background(), []plex.Episode{
		{RatingKey: "10", SeasonNumber: 1, EpisodeNumber: 1, Files: []string{"/tv/s01e01.mkv"}},
		{RatingKey: "20", SeasonNumber: 1, EpisodeNumber: 2},
		{RatingKey: "30", SeasonNumber: 1, EpisodeNumber: 3},
	})
	if len(parts.calls) != 2 {
		t.Fatalf("expected per-episode lookups only for episodes without files, got %v", parts.calls)
	}
	if _, _, ok := inv.Lookup(1, 2); !ok {
		t.Fatal("expected fetched episode to be present")
	}
	if _, _, ok := inv.Lookup(1, 3); ok {
		t.Fatal("expected failed lookup to omit the episode")
	}
	if inv.Omitted != 1 {
		t.Fatalf("expected one omitted episode, got %d", inv.Omitted)
	}
}

func TestNormalizePath(t *testing.T) {
	cwd, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	tests := []struct {
		in   string
		want string
	}{
		{`/media/tv/../tv/Show/S01E01.mkv`, "/media/tv/Show/S01E01.mkv"},
		{`\\?\D:\TV\Show\S01E01.mkv`, "D:/TV/Show/S01E01.mkv"},
		{`\\?\UNC\nas\tv\Show\S01E01.mkv`, "//nas/tv/Show/S01E01.mkv"},
		{`\\nas\tv\Show\..\S01E01.mkv`, "//nas/tv/S01E01.mkv"},
		{`relative/file.mkv`, filepath.ToSlash(filepath.Join(cwd, "relative", "file.mkv"))},
		{"", ""},
	}
	for _, tt := range tests {
		if got := inventory.NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
