package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"episodegap/internal/config"
	"episodegap/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	plex       *testsupport.FakePlex
	tvdb       *testsupport.FakeTVDB
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "xdg-cache"))

	plexFake := &testsupport.FakePlex{
		Token: "plex-test-token",
		Libraries: []testsupport.PlexLibrary{{
			Key:   "1",
			Title: "TV Shows",
			Shows: []testsupport.PlexShow{{
				RatingKey: "10", Title: "Example", Year: 2010, TVDBID: "500",
				Episodes: []testsupport.PlexEpisode{
					{RatingKey: "11", Season: 1, Episode: 1, Files: []string{"/media/s01e01.mkv", "/backup/s01e01.mkv"}},
				},
			}},
		}},
	}
	tvdbFake := &testsupport.FakeTVDB{
		APIKey: "tvdb-test-key",
		Series: []testsupport.TVDBSeries{{
			ID: "500", Name: "Example", Year: "2010",
			Seasons: []testsupport.TVDBSeason{{
				ID: 5001, Number: 1, Type: "official",
				Episodes: []testsupport.TVDBEpisode{{Number: 1, Name: "Pilot"}, {Number: 2, Name: "Second"}},
			}},
		}},
	}
	plexSrv := plexFake.Start(t)
	tvdbSrv := tvdbFake.Start(t)

	cfg := testsupport.NewConfig(t, testsupport.WithPlexURL(plexSrv.URL), testsupport.WithTVDBURL(tvdbSrv.URL))
	cfg.Logging.Level = "warn"
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, plex: plexFake, tvdb: tvdbFake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode json %q: %v", data, err)
	}
}
