package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"episodegap/internal/config"
	"episodegap/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckPlex(t *testing.T) {
	srv := (&testsupport.FakePlex{Token: "good"}).Start(t)

	tests := []struct {
		name   string
		url    string
		token  string
		passed bool
		detail string
	}{
		{name: "ok", url: srv.URL, token: "good", passed: true, detail: "Reachable"},
		{name: "bad token", url: srv.URL, token: "bad", detail: "auth failed"},
		{name: "missing url", token: "good", detail: "missing url"},
		{name: "missing token", url: srv.URL, detail: "missing token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckPlex(context.Background(), tt.url, tt.token)
			if result.Passed != tt.passed {
				t.Fatalf("passed = %v (%s), want %v", result.Passed, result.Detail, tt.passed)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail = %q, want it to contain %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestCheckTVDB(t *testing.T) {
	srv := (&testsupport.FakeTVDB{APIKey: "good"}).Start(t)

	ok := CheckTVDB(context.Background(), config.TVDB{APIKey: "good", BaseURL: srv.URL})
	if !ok.Passed {
		t.Fatalf("expected pass, got: %s", ok.Detail)
	}
	bad := CheckTVDB(context.Background(), config.TVDB{APIKey: "bad", BaseURL: srv.URL})
	if bad.Passed || !strings.Contains(bad.Detail, "auth failed") {
		t.Fatalf("bad key result = %+v", bad)
	}
	missing := CheckTVDB(context.Background(), config.TVDB{BaseURL: srv.URL})
	if missing.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	plexSrv := (&testsupport.FakePlex{Token: "plex-test-token"}).Start(t)
	tvdbSrv := (&testsupport.FakeTVDB{APIKey: "tvdb-test-key"}).Start(t)
	cfg := testsupport.NewConfig(t, testsupport.WithPlexURL(plexSrv.URL), testsupport.WithTVDBURL(tvdbSrv.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if !AllPassed(results) {
		t.Fatal("AllPassed = false")
	}
}
