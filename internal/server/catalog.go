package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsearch/internal/endpoint"
	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/query"
	"github.com/desertthunder/spotsearch/internal/services"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	routeSearch = "GET /search"
	routeLookup = "GET /lookup/{type}/{id}"
	routeHealth = "GET /healthz"
)

// CatalogHandler serves search and lookup requests from a [services.Searcher].
type CatalogHandler struct {
	searcher services.Searcher
	defaults services.SearchOptions
	logger   *log.Logger
}

var _ Handler = (*CatalogHandler)(nil)

// NewCatalogHandler creates a CatalogHandler. defaults fill in parameters a request leaves out.
func NewCatalogHandler(searcher services.Searcher, defaults services.SearchOptions, logger *log.Logger) *CatalogHandler {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &CatalogHandler{searcher: searcher, defaults: defaults, logger: logger}
}

func (h *CatalogHandler) Routes() []string {
	return []string{routeSearch, routeLookup, routeHealth}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeSearch:
		h.search(w, r)
	case routeLookup:
		h.lookup(w, r)
	case routeHealth:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *CatalogHandler) search(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rs, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, rs.Raw())
}

func (h *CatalogHandler) lookup(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseEntityType(r.PathValue("type"))
	if err != nil {
		h.fail(w, r, errors.Join(shared.ErrInvalidArgument, err))
		return
	}

	opts, err := h.options(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rs, err := h.searcher.Lookup(r.Context(), kind, r.PathValue("id"), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, rs.Raw())
}

// options reads search parameters from the query string over the handler defaults.
func (h *CatalogHandler) options(r *http.Request) (services.SearchOptions, error) {
	q := r.URL.Query()
	opts := h.defaults

	if v := q.Get("type"); v != "" {
		opts.Types = nil
		for _, t := range strings.Split(v, ",") {
			kind, err := models.ParseEntityType(strings.TrimSpace(t))
			if err != nil {
				return opts, errors.Join(shared.ErrInvalidArgument, err)
			}
			opts.Types = append(opts.Types, kind)
		}
	}

	if filters := q["filter"]; len(filters) > 0 {
		opts.Filters = nil
		for _, f := range filters {
			name, value, ok := strings.Cut(f, ":")
			if !ok || name == "" {
				return opts, errors.Join(shared.ErrInvalidArgument, errors.New("filter must look like name:value"))
			}
			opts.Filters = append(opts.Filters, query.Filter{Name: name, Value: value})
		}
	}

	if q.Has("market") {
		opts.Market = q.Get("market")
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{{"limit", &opts.Limit}, {"offset", &opts.Offset}} {
		if !q.Has(p.name) {
			continue
		}
		n, err := strconv.Atoi(q.Get(p.name))
		if err != nil {
			return opts, errors.Join(shared.ErrInvalidArgument, err)
		}
		*p.dst = endpoint.Int(n)
	}

	if q.Has("resolve_titles") {
		b, err := strconv.ParseBool(q.Get("resolve_titles"))
		if err != nil {
			return opts, errors.Join(shared.ErrInvalidArgument, err)
		}
		opts.ResolveTitles = b
	}

	return opts, nil
}

func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusFor maps an error from the catalog client to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidReference),
		errors.Is(err, shared.ErrUnsupportedReference):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrUpstream), errors.Is(err, shared.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrMissingCredentials), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewRouter wires the catalog handler and, when registry is set, a Prometheus /metrics endpoint.
func NewRouter(searcher services.Searcher, defaults services.SearchOptions, registry *prometheus.Registry, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(NewCatalogHandler(searcher, defaults, logger))
	if registry != nil {
		router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return router
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
