package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/results"
	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/shared"
	th "github.com/desertthunder/spotsearch/internal/testing"
	"github.com/prometheus/client_golang/prometheus"
)

type mockSearcher struct {
	raw      []byte
	err      error
	input    string
	kind     models.EntityType
	id       string
	lastOpts services.SearchOptions
}

func (m *mockSearcher) Search(ctx context.Context, input string, opts services.SearchOptions) (*results.ResultSet, error) {
	m.input, m.lastOpts = input, opts
	if m.err != nil {
		return nil, m.err
	}
	return results.Materialize(m.raw)
}

func (m *mockSearcher) Lookup(ctx context.Context, kind models.EntityType, id string, opts services.SearchOptions) (*results.ResultSet, error) {
	m.kind, m.id, m.lastOpts = kind, id, opts
	if m.err != nil {
		return nil, m.err
	}
	return results.MaterializeLookup(kind, m.raw)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body["error"]
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware runs in order added", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		get(t, router, "/ping")
		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("order = %s", got)
		}
	})

	t.Run("routes lists mounted patterns", func(t *testing.T) {
		router := NewRouter(&mockSearcher{}, services.SearchOptions{}, prometheus.NewRegistry(), nil)
		want := []string{"GET /healthz", "GET /lookup/{type}/{id}", "GET /metrics", "GET /search"}
		if got := router.Routes(); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("Routes() = %v, want %v", got, want)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	logger := shared.NewDiscardLogger()

	t.Run("logging sets request id", func(t *testing.T) {
		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rec := get(t, h, "/")
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a generated request id")
		}
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("logging keeps caller request id", func(t *testing.T) {
		h := Logging(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != "abc" {
			t.Errorf("request id = %q", got)
		}
	})

	t.Run("recover", func(t *testing.T) {
		h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := get(t, h, "/")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if msg := errorBody(t, rec); msg != "internal error" {
			t.Errorf("error = %q", msg)
		}
	})
}

func TestCatalogHandler(t *testing.T) {
	t.Run("search passes raw payload through", func(t *testing.T) {
		raw := th.Fixture(t, "search_tracks.json")
		m := &mockSearcher{raw: raw}
		router := NewRouter(m, services.SearchOptions{Market: "US"}, nil, nil)

		rec := get(t, router, "/search?q=muse&type=track,album&filter=artist:Muse&limit=5&offset=10&resolve_titles=true")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if rec.Body.String() != string(raw) {
			t.Error("body should be the upstream payload unchanged")
		}

		opts := m.lastOpts
		if m.input != "muse" {
			t.Errorf("input = %q", m.input)
		}
		if len(opts.Types) != 2 || opts.Types[0] != models.TypeTrack || opts.Types[1] != models.TypeAlbum {
			t.Errorf("types = %v", opts.Types)
		}
		if len(opts.Filters) != 1 || opts.Filters[0].Name != "artist" || opts.Filters[0].Value != "Muse" {
			t.Errorf("filters = %v", opts.Filters)
		}
		if opts.Market != "US" {
			t.Errorf("market = %q, want default US", opts.Market)
		}
		if opts.Limit == nil || *opts.Limit != 5 || opts.Offset == nil || *opts.Offset != 10 {
			t.Errorf("paging = %v/%v", opts.Limit, opts.Offset)
		}
		if !opts.ResolveTitles {
			t.Error("resolve_titles should be set")
		}
	})

	t.Run("lookup", func(t *testing.T) {
		m := &mockSearcher{raw: th.Fixture(t, "track.json")}
		router := NewRouter(m, services.SearchOptions{}, nil, nil)

		rec := get(t, router, "/lookup/track/12Chz98pHFMPJEknJQMWvI?market=GB")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if m.kind != models.TypeTrack || m.id != "12Chz98pHFMPJEknJQMWvI" {
			t.Errorf("lookup = %s/%s", m.kind, m.id)
		}
		if m.lastOpts.Market != "GB" {
			t.Errorf("market = %q", m.lastOpts.Market)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, NewRouter(&mockSearcher{}, services.SearchOptions{}, nil, nil), "/healthz")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("bad requests", func(t *testing.T) {
		router := NewRouter(&mockSearcher{raw: th.Fixture(t, "search_tracks.json")}, services.SearchOptions{}, nil, nil)

		tests := []struct {
			name   string
			target string
		}{
			{"unknown type", "/search?q=muse&type=podcast"},
			{"malformed filter", "/search?q=muse&filter=artist"},
			{"bad limit", "/search?q=muse&limit=ten"},
			{"bad offset", "/search?q=muse&offset=x"},
			{"bad resolve flag", "/search?q=muse&resolve_titles=maybe"},
			{"unknown lookup kind", "/lookup/podcast/123"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := get(t, router, tt.target)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", rec.Code)
				}
				if errorBody(t, rec) == "" {
					t.Error("expected an error message")
				}
			})
		}
	})

	t.Run("searcher errors", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{shared.ErrMissingArgument, http.StatusBadRequest},
			{fmt.Errorf("wrap: %w", shared.ErrUnsupportedReference), http.StatusBadRequest},
			{shared.ErrUpstream, http.StatusBadGateway},
			{shared.ErrTimeout, http.StatusGatewayTimeout},
			{shared.ErrMissingCredentials, http.StatusServiceUnavailable},
			{errors.New("mystery"), http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.err.Error(), func(t *testing.T) {
				router := NewRouter(&mockSearcher{err: tt.err}, services.SearchOptions{}, nil, nil)
				if rec := get(t, router, "/search?q=muse"); rec.Code != tt.want {
					t.Errorf("status = %d, want %d", rec.Code, tt.want)
				}
			})
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		router := NewRouter(&mockSearcher{}, services.SearchOptions{}, nil, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "spotsearch_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	router := NewRouter(&mockSearcher{}, services.SearchOptions{}, registry, nil)
	rec := get(t, router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "spotsearch_test_total 1") {
		t.Errorf("metrics body missing counter:\n%s", rec.Body.String())
	}

	t.Run("absent without registry", func(t *testing.T) {
		router := NewRouter(&mockSearcher{}, services.SearchOptions{}, nil, nil)
		if rec := get(t, router, "/metrics"); rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), shared.NewDiscardLogger())
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
