package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotsearch/internal/shared"
	tu "github.com/desertthunder/spotsearch/internal/testing"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	albumLink    = "https://open.spotify.com/album/0eFHYz8NmK75zSplL5qlfM"
	playlistLink = "https://open.spotify.com/playlist/3cEYpjA9oz9GiPac4AsH4n"
)

// catalogServer serves fixture payloads for the token and API endpoints.
type catalogServer struct {
	*httptest.Server
	apiCalls atomic.Int32
	lastPath atomic.Value
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	cs := &catalogServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})

	serve := func(fixture string) http.HandlerFunc {
		body := tu.Fixture(t, fixture)
		return func(w http.ResponseWriter, r *http.Request) {
			cs.apiCalls.Add(1)
			cs.lastPath.Store(r.URL.RequestURI())
			if r.Header.Get("Authorization") != "Bearer tok" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
		}
	}
	mux.HandleFunc("GET /v1/search", serve("search_tracks.json"))
	mux.HandleFunc("GET /v1/tracks/XYZ", serve("track.json"))
	mux.HandleFunc("GET /v1/albums/0eFHYz8NmK75zSplL5qlfM", serve("album.json"))
	mux.HandleFunc("GET /v1/playlists/3cEYpjA9oz9GiPac4AsH4n", serve("playlist.json"))

	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func (cs *catalogServer) config() *shared.Config {
	config := shared.DefaultConfig()
	config.API.BaseURL = cs.URL + "/v1"
	config.API.TokenURL = cs.URL + "/token"
	config.API.RequestsPerSecond = 0
	config.Credentials.Spotify.ClientID = "id"
	config.Credentials.Spotify.ClientSecret = "secret"
	config.Log.Level = "error"
	return config
}

// runApp runs the CLI with args against a fresh runner and returns its output.
func runApp(t *testing.T, opts RunnerOpts, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	opts.Output = output
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}
	err := newApp(NewRunner(opts)).Run(context.Background(), append([]string{"spotsearch"}, args...))
	return output.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			registry := prometheus.NewRegistry()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Registry:   registry,
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
			if runner.registry != registry {
				t.Error("expected registry to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.registry == nil {
				t.Error("expected a registry")
			}
			if runner.config != nil {
				t.Error("config should be loaded lazily")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
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

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"search", "lookup", "batch", "export", "diff", "download", "config", "serve", "tui"} {
			if !names[want] {
				t.Errorf("missing command %q", want)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("search keywords", func(t *testing.T) {
		cs := newCatalogServer(t)
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "search", "muse", "uprising")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if !strings.Contains(out, "Tracks (2 of") || !strings.Contains(out, "Muse - Uprising") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if got := cs.lastPath.Load().(string); got != "/v1/search?q=muse%20uprising&type=track" {
			t.Errorf("unexpected request %s", got)
		}
	})

	t.Run("search track link is a lookup", func(t *testing.T) {
		cs := newCatalogServer(t)
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "search", "https://open.spotify.com/track/XYZ")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if cs.lastPath.Load().(string) != "/v1/tracks/XYZ" {
			t.Errorf("unexpected request %v", cs.lastPath.Load())
		}
		if !strings.Contains(out, "Muse - Uprising • The Resistance") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("dry run does not call the API", func(t *testing.T) {
		cs := newCatalogServer(t)
		out, err := runApp(t, RunnerOpts{Config: cs.config()},
			"search", "--dry-run", "--filter", "artist:Muse", "--type", "track,album", "--market", "US", "--limit", "2", "rock")
		if err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
		if !strings.Contains(out, "Target: search?q=rock%20artist:Muse&type=track,album&market=US&limit=2") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if cs.apiCalls.Load() != 0 {
			t.Errorf("dry run made %d API calls", cs.apiCalls.Load())
		}
	})

	t.Run("search argument errors", func(t *testing.T) {
		cs := newCatalogServer(t)
		tests := []struct {
			name string
			args []string
			want error
		}{
			{name: "no input", args: []string{"search"}, want: shared.ErrMissingArgument},
			{name: "bad filter", args: []string{"search", "--filter", "nocolon", "rock"}, want: shared.ErrInvalidArgument},
			{name: "bad type", args: []string{"search", "--type", "song", "rock"}, want: shared.ErrInvalidArgument},
			{name: "negative limit", args: []string{"search", "--limit=-1", "rock"}, want: shared.ErrInvalidArgument},
			{name: "bad link", args: []string{"search", "https://open.spotify.com/track/"}, want: shared.ErrInvalidReference},
			{name: "serve with bad filter", args: []string{"serve", "--filter", "nocolon"}, want: shared.ErrInvalidArgument},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := runApp(t, RunnerOpts{Config: cs.config()}, tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
		if cs.apiCalls.Load() != 0 {
			t.Errorf("invalid input reached the API %d times", cs.apiCalls.Load())
		}
	})

	t.Run("lookup album as raw JSON and save", func(t *testing.T) {
		cs := newCatalogServer(t)
		saved := filepath.Join(t.TempDir(), "album.json")
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "lookup", "--json", "--save", saved, "albums", "0eFHYz8NmK75zSplL5qlfM")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !strings.Contains(out, "Warner Records") {
			t.Errorf("raw JSON should include unmapped fields:\n%s", out)
		}
		tu.AssertFileExists(t, saved)
	})

	t.Run("lookup album lists its tracks", func(t *testing.T) {
		cs := newCatalogServer(t)
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "lookup", "album", "0eFHYz8NmK75zSplL5qlfM")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !strings.Contains(out, "Tracks: 2") || !strings.Contains(out, "Muse - Resistance") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("batch reports each input", func(t *testing.T) {
		cs := newCatalogServer(t)
		file := filepath.Join(t.TempDir(), "inputs.txt")
		if err := os.WriteFile(file, []byte("# inputs\n\n"+albumLink+"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "batch", "--file", file, "muse", "https://open.spotify.com/track/")
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}
		for _, want := range []string{"✓ muse: 2 tracks", "✗ https://open.spotify.com/track/", "2/3 inputs succeeded"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("export writes files and manifest", func(t *testing.T) {
		cs := newCatalogServer(t)
		dir := t.TempDir()
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "export", "--format", "csv", "--output", dir, "--rate", "100", albumLink, playlistLink)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out, "Successful: 2/2") {
			t.Errorf("unexpected output:\n%s", out)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "0eFHYz8NmK75zSplL5qlfM_tracks.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "3cEYpjA9oz9GiPac4AsH4n_tracks.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("diff", func(t *testing.T) {
		cs := newCatalogServer(t)
		out, err := runApp(t, RunnerOpts{Config: cs.config()}, "diff", albumLink, playlistLink)
		if err != nil {
			t.Fatalf("diff failed: %v", err)
		}
		for _, want := range []string{"Matched: 1", "- Muse - Resistance", "+ Queen - Bohemian Rhapsody"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("download cover", func(t *testing.T) {
		cs := newCatalogServer(t)
		rt := tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("jpeg")),
			Header:     make(http.Header),
		}, nil)
		dest := filepath.Join(t.TempDir(), "cover.jpg")

		out, err := runApp(t, RunnerOpts{Config: cs.config(), HTTPClient: &http.Client{Transport: rt}},
			"download", "--output", dest, albumLink)
		if err != nil {
			t.Fatalf("download failed: %v", err)
		}
		if len(rt.Requests) != 1 || rt.Requests[0].URL.String() != "https://i.scdn.co/image/large" {
			t.Errorf("unexpected download requests %v", rt.Requests)
		}
		if tu.MustReadFile(t, dest) != "jpeg" || !strings.Contains(out, "Saved") {
			t.Errorf("unexpected result %q", out)
		}
	})

	t.Run("download preview missing", func(t *testing.T) {
		cs := newCatalogServer(t)
		_, err := runApp(t, RunnerOpts{Config: cs.config()}, "download", "--preview", "https://open.spotify.com/track/XYZ")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		_, err := runApp(t, RunnerOpts{Config: config}, "search", "muse")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		cs := newCatalogServer(t)
		registry := prometheus.NewRegistry()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: cs.config(), Registry: registry, Output: output, Logger: shared.NewDiscardLogger()})

		if err := newApp(runner).Run(context.Background(), []string{"spotsearch", "search", "muse"}); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		var metrics bytes.Buffer
		if err := runner.writeMetrics(&metrics); err != nil {
			t.Fatalf("writeMetrics failed: %v", err)
		}
		if !strings.Contains(metrics.String(), `spotsearch_requests_total{endpoint="search",status="200"} 1`) {
			t.Errorf("unexpected metrics:\n%s", metrics.String())
		}
	})
}

func TestConfigCommands(t *testing.T) {
	t.Run("config init", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		out, err := runApp(t, RunnerOpts{}, "--config", path, "config", "init")
		if err != nil {
			t.Fatalf("config init failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(out, "Config written to") {
			t.Errorf("unexpected output %q", out)
		}

		if _, err := runApp(t, RunnerOpts{}, "--config", path, "config", "init"); err == nil {
			t.Error("expected error when the file exists")
		}
	})

	t.Run("config show masks secrets", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientSecret = "supersecret"

		out, err := runApp(t, RunnerOpts{Config: config}, "config", "show")
		if err != nil {
			t.Fatalf("config show failed: %v", err)
		}
		if strings.Contains(out, "supersecret") || !strings.Contains(out, "supe*******") {
			t.Errorf("secret not masked:\n%s", out)
		}
	})

	t.Run("env overrides credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(path); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SPOTIFY_CLIENT_ID", "env-id")

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewDiscardLogger()})
		if err := newApp(runner).Run(context.Background(), []string{"spotsearch", "--config", path, "config", "show"}); err != nil {
			t.Fatalf("config show failed: %v", err)
		}
		if runner.config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env override, got %q", runner.config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := runApp(t, RunnerOpts{Config: shared.DefaultConfig()}, "--log-level", "loud", "config", "show")
		if err == nil {
			t.Error("expected error for invalid log level")
		}
	})
}
