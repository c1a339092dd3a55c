package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/storage"
	tu "github.com/desertthunder/reel/internal/testing"
	"github.com/urfave/cli/v3"
)

func fightClub() models.MovieDetails {
	return models.MovieDetails{
		Movie: models.Movie{
			ID:          550,
			Title:       "Fight Club",
			ReleaseDate: "1999-10-15",
			VoteAverage: 8.4,
			PosterPath:  "/fc.jpg",
		},
		Runtime: 139,
		Genres:  []models.Genre{{ID: 18, Name: "Drame"}},
	}
}

// testRunner wires a runner to a mock movie service, a memory favorites backend and a temp database.
type testRunner struct {
	*Runner
	out    *bytes.Buffer
	mem    *storage.MemoryBackend
	movies *tu.MockMovieService
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "reel.db")

	mem := storage.NewMemoryBackend()
	movies := tu.NewMockMovieService(fightClub())
	movies.GenreSet = []models.Genre{{ID: 18, Name: "Drame"}}
	out := &bytes.Buffer{}

	r := NewRunner(RunnerOpts{
		Config:     config,
		Movies:     movies,
		NewStorage: func() storage.Storage { return mem.NewContext() },
		Logger:     shared.NewLogger(nil),
		Output:     out,
	})
	t.Cleanup(func() {
		r.Close()
		mem.Close()
	})
	return &testRunner{Runner: r, out: out, mem: mem, movies: movies}
}

func (tr *testRunner) run(t *testing.T, args ...string) error {
	t.Helper()
	tr.out.Reset()
	app := &cli.Command{
		Name:     "reel",
		Writer:   tr.out,
		Commands: tr.register(),
	}
	return app.Run(context.Background(), append([]string{"reel"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			movies := tu.NewMockMovieService()
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Movies:     movies,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.movies != movies {
				t.Error("expected movies to be set")
			}
			if runner.apiService() != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("movie service requires credentials", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.TMDB.APIKey, config.TMDB.AccessToken = "", ""
			runner := NewRunner(RunnerOpts{Config: config})

			if _, err := runner.movieService(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "movies", "favorites", "cache", "api", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d: expected %q, got %q", i, want[i], cmd.Name)
			}
		}
	})

	t.Run("Close runs closers in reverse order", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		var order []int
		runner.onClose(func() { order = append(order, 1) })
		runner.onClose(func() { order = append(order, 2) })

		runner.Close()
		runner.Close()

		if len(order) != 2 || order[0] != 2 || order[1] != 1 {
			t.Errorf("expected [2 1], got %v", order)
		}
	})

	t.Run("storage falls back to memory-only when the database cannot open", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(t.TempDir(), "missing", "dir", "reel.db")
		out := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: out, Movies: tu.NewMockMovieService()})
		defer runner.Close()

		store, result := runner.favoritesStore(context.Background())
		defer store.Close()

		if !store.MemoryOnly() {
			t.Fatalf("expected memory-only store, got status %v", result.Status)
		}
		if _, err := store.Toggle(context.Background(), 550); err != nil {
			t.Fatalf("memory-only toggle should succeed: %v", err)
		}
		if !store.IsFavorite(550) {
			t.Error("expected 550 to be a favorite in memory")
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	t.Run("toggle persists across invocations", func(t *testing.T) {
		tr := newTestRunner(t)

		if err := tr.run(t, "favorites", "toggle", "550", "13"); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !strings.Contains(tr.out.String(), "♥ 550 added to favorites") {
			t.Errorf("unexpected toggle output: %q", tr.out.String())
		}

		if err := tr.run(t, "favorites", "list", "--json"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if got := strings.TrimSpace(tr.out.String()); got != `{"ids":[550,13],"memory_only":false}` {
			t.Errorf("unexpected list output: %s", got)
		}

		if err := tr.run(t, "fav", "toggle", "550"); err != nil {
			t.Fatalf("second toggle: %v", err)
		}
		if !strings.Contains(tr.out.String(), "550 removed from favorites") {
			t.Errorf("unexpected toggle output: %q", tr.out.String())
		}

		if err := tr.run(t, "favorites", "check", "13"); err != nil {
			t.Fatalf("check: %v", err)
		}
		if !strings.Contains(tr.out.String(), "13 is a favorite") {
			t.Errorf("unexpected check output: %q", tr.out.String())
		}
		if err := tr.run(t, "favorites", "check", "550"); err != nil {
			t.Fatalf("check: %v", err)
		}
		if !strings.Contains(tr.out.String(), "550 is not a favorite") {
			t.Errorf("unexpected check output: %q", tr.out.String())
		}
	})

	t.Run("toggle rejects invalid ids before writing", func(t *testing.T) {
		tr := newTestRunner(t)

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing id", nil, shared.ErrMissingArgument},
			{"not a number", []string{"abc"}, shared.ErrInvalidArgument},
			{"zero", []string{"0"}, shared.ErrInvalidArgument},
			{"one bad id among good", []string{"550", "x3"}, shared.ErrInvalidArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tr.run(t, append([]string{"favorites", "toggle"}, tt.args...)...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		if err := tr.run(t, "favorites", "list", "--json"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if !strings.Contains(tr.out.String(), `"ids":[]`) {
			t.Errorf("expected no favorites after rejected toggles, got %s", tr.out.String())
		}
	})

	t.Run("write failure is reported and leaves the set unchanged", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "favorites", "toggle", "550"); err != nil {
			t.Fatalf("toggle: %v", err)
		}

		tr.mem.Fail(storage.OpSet, errors.New("disk full"))
		err := tr.run(t, "favorites", "toggle", "13")
		if !errors.Is(err, shared.ErrStorageWrite) {
			t.Fatalf("expected ErrStorageWrite, got %v", err)
		}

		tr.mem.Fail(storage.OpSet, nil)
		if err := tr.run(t, "favorites", "list", "--json"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if !strings.Contains(tr.out.String(), `"ids":[550]`) {
			t.Errorf("expected only 550, got %s", tr.out.String())
		}
	})

	t.Run("unreadable storage keeps changes in memory", func(t *testing.T) {
		tr := newTestRunner(t)
		tr.mem.Fail(storage.OpGet, errors.New("locked"))

		if err := tr.run(t, "favorites", "toggle", "550"); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !strings.Contains(tr.out.String(), "changes were not saved") {
			t.Errorf("expected memory-only warning, got %q", tr.out.String())
		}
	})

	t.Run("list with details falls back to the movie cache", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "favorites", "toggle", "550", "999"); err != nil {
			t.Fatalf("toggle: %v", err)
		}

		if err := tr.run(t, "favorites", "list", "--details"); err != nil {
			t.Fatalf("list: %v", err)
		}
		out := tr.out.String()
		if !strings.Contains(out, "Fight Club (1999)") {
			t.Errorf("expected resolved movie, got %q", out)
		}
		if !strings.Contains(out, "999  (unavailable") {
			t.Errorf("expected unresolved favorite, got %q", out)
		}

		tr.movies.Err = errors.New("offline")
		if err := tr.run(t, "favorites", "list", "--details"); err != nil {
			t.Fatalf("offline list: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Fight Club (1999) ★ 8.4  [cached]") {
			t.Errorf("expected cached movie, got %q", tr.out.String())
		}
	})

	t.Run("export writes the resolved favorites", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "favorites", "toggle", "550"); err != nil {
			t.Fatalf("toggle: %v", err)
		}

		path := filepath.Join(t.TempDir(), "favs.md")
		if err := tr.run(t, "favorites", "export", "--format", "markdown", "--output", path, "--title", "Mes films"); err != nil {
			t.Fatalf("export: %v", err)
		}
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "Mes films") || !strings.Contains(content, "Fight Club") {
			t.Errorf("unexpected export content: %q", content)
		}
	})

	t.Run("export with no favorites fails", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "favorites", "export"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("watch warns when other processes cannot be heard", func(t *testing.T) {
		tests := []struct {
			name      string
			crossProc bool
			wantWarn  bool
		}{
			{name: "no broker", crossProc: false, wantWarn: true},
			{name: "broker attached", crossProc: true, wantWarn: false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tr := newTestRunner(t)
				tr.crossProc = tt.crossProc

				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				if err := tr.FavoritesWatch(ctx, nil); err != nil {
					t.Fatalf("watch: %v", err)
				}

				out := tr.out.String()
				if !strings.Contains(out, "Watching favorites (0)") {
					t.Errorf("expected watch banner, got %q", out)
				}
				if got := strings.Contains(out, "broker.nats_url is not set"); got != tt.wantWarn {
					t.Errorf("broker warning shown = %v, want %v (output %q)", got, tt.wantWarn, out)
				}
			})
		}
	})
}

func TestMoviesCommands(t *testing.T) {
	t.Run("trending marks favorites", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "favorites", "toggle", "550"); err != nil {
			t.Fatalf("toggle: %v", err)
		}

		if err := tr.run(t, "movies", "trending"); err != nil {
			t.Fatalf("trending: %v", err)
		}
		if !strings.Contains(tr.out.String(), "♥     550  Fight Club (1999) ★ 8.4") {
			t.Errorf("unexpected trending output: %q", tr.out.String())
		}
	})

	t.Run("search", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "movies", "search", "  fight   club "); err != nil {
			t.Fatalf("search: %v", err)
		}
		if tr.movies.CallCount("search:fight club") != 1 {
			t.Errorf("expected normalized query, calls %v", tr.movies.Calls)
		}
		if !strings.Contains(tr.out.String(), "Fight Club") {
			t.Errorf("unexpected search output: %q", tr.out.String())
		}

		if err := tr.run(t, "movies", "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("discover as JSON", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "m", "discover", "--year", "1999", "--json"); err != nil {
			t.Fatalf("discover: %v", err)
		}
		if !strings.Contains(tr.out.String(), `"total_results": 1`) && !strings.Contains(tr.out.String(), `"total_results":1`) {
			t.Errorf("unexpected discover output: %q", tr.out.String())
		}
	})

	t.Run("show renders every section", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "movies", "show", "550"); err != nil {
			t.Fatalf("show: %v", err)
		}
		out := tr.out.String()
		for _, want := range []string{"Fight Club (1999)", "Runtime:  2h 19m", "Genres:   Drame", "Director: Director", "▶"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("show of an unknown movie fails", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "movies", "show", "42"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("genres", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "movies", "genres"); err != nil {
			t.Fatalf("genres: %v", err)
		}
		if !strings.Contains(tr.out.String(), "18  Drame") {
			t.Errorf("unexpected genres output: %q", tr.out.String())
		}

		if err := tr.run(t, "movies", "genres", "--id", "18"); err != nil {
			t.Fatalf("genre movies: %v", err)
		}
		if tr.movies.CallCount("genre:18") != 1 {
			t.Errorf("expected ByGenre call, calls %v", tr.movies.Calls)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	tr := newTestRunner(t)
	if err := tr.run(t, "favorites", "toggle", "550"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := tr.run(t, "cache", "favorites", "--prune-days", "30"); err != nil {
		t.Fatalf("cache favorites: %v", err)
	}
	if !strings.Contains(tr.out.String(), "Fetched 1") {
		t.Errorf("unexpected cache output: %q", tr.out.String())
	}

	if err := tr.run(t, "cache", "stats"); err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(tr.out.String(), "Movies:  1") {
		t.Errorf("unexpected stats output: %q", tr.out.String())
	}
}

func TestAPIGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/movie/550":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":550,"title":"Fight Club"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status_message":"not found"}`))
		}
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:    services.NewAPIService(srv.URL, "test-key", "fr-FR", srv.Client()),
		Output: out,
	})
	run := func(args ...string) error {
		out.Reset()
		app := &cli.Command{Name: "reel", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"reel", "api", "get"}, args...))
	}

	t.Run("prints JSON", func(t *testing.T) {
		if err := run("--json", "/movie/550"); err != nil {
			t.Fatalf("api get: %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != `{"id":550,"title":"Fight Club"}` {
			t.Errorf("unexpected output: %s", got)
		}
	})

	t.Run("non-2xx is an API error", func(t *testing.T) {
		err := run("/movie/0")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	t.Run("config writes the template once", func(t *testing.T) {
		tr := newTestRunner(t)
		if err := tr.run(t, "setup", "config", "--config", configPath); err != nil {
			t.Fatalf("setup config: %v", err)
		}
		tu.AssertFileExists(t, configPath)
		if !strings.Contains(tr.out.String(), "reel setup database") {
			t.Errorf("expected next steps, got %q", tr.out.String())
		}

		if err := tr.run(t, "setup", "config", "--config", configPath); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for an existing file, got %v", err)
		}
	})

	t.Run("database migrates and rolls back", func(t *testing.T) {
		dbPath := filepath.Join(dir, "setup.db")
		custom := filepath.Join(dir, "custom.toml")
		if err := os.WriteFile(custom, []byte("[database]\npath = \""+filepath.ToSlash(dbPath)+"\"\n"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		tr := newTestRunner(t)
		if err := tr.run(t, "setup", "database", "--config", custom); err != nil {
			t.Fatalf("setup database: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(tr.out.String(), "Database ready at "+filepath.ToSlash(dbPath)) {
			t.Errorf("unexpected output: %q", tr.out.String())
		}

		if err := tr.run(t, "setup", "database", "--config", custom, "--rollback"); err != nil {
			t.Fatalf("rollback: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Rolled back") {
			t.Errorf("unexpected output: %q", tr.out.String())
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("parseMovieID", func(t *testing.T) {
		tests := []struct {
			in      string
			want    int
			wantErr error
		}{
			{"550", 550, nil},
			{"", 0, shared.ErrMissingArgument},
			{"abc", 0, shared.ErrInvalidArgument},
			{"-1", 0, shared.ErrInvalidArgument},
			{"1.5", 0, shared.ErrInvalidArgument},
		}
		for _, tt := range tests {
			got, err := parseMovieID(tt.in)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("parseMovieID(%q) = %d, %v; want %d, %v", tt.in, got, err, tt.want, tt.wantErr)
			}
		}
	})

	t.Run("trailerURL prefers trailers", func(t *testing.T) {
		videos := []models.Video{
			{Key: "x", Site: "Dailymotion", Type: "Trailer"},
			{Key: "teaser", Site: "YouTube", Type: "Teaser"},
			{Key: "trailer", Site: "Vimeo", Type: "Trailer"},
		}
		if got := trailerURL(videos); got != "https://vimeo.com/trailer" {
			t.Errorf("expected vimeo trailer, got %q", got)
		}
		if got := trailerURL(videos[:2]); got != "https://www.youtube.com/watch?v=teaser" {
			t.Errorf("expected teaser fallback, got %q", got)
		}
		if got := trailerURL(nil); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("movieLine", func(t *testing.T) {
		m := models.Movie{ID: 13, Title: "Forrest Gump"}
		if got := movieLine(m, false); got != "       13  Forrest Gump" {
			t.Errorf("unexpected line %q", got)
		}
	})
}
