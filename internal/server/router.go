package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter mounts the gateway's routes on an [http.ServeMux] using method patterns such as "GET /search",
// so the mux itself answers 404 and 405. Every route is wrapped in the middleware registered before it.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	patterns    []string
}

// NewBasicRouter creates an empty router.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. The first added runs outermost; only routes registered afterwards are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle mounts handler at "METHOD path". The method is upper-cased, so "get" and "GET" are equivalent.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mount(strings.ToUpper(method)+" "+path, r.Apply(handler))
}

// Handler mounts one handler at each pattern it reports through [Handler.Routes], wrapping it once.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, pattern := range handler.Routes() {
		r.mount(pattern, wrapped)
	}
}

// Routes returns the mounted patterns in sorted order.
func (r *BasicRouter) Routes() []string {
	routes := slices.Clone(r.patterns)
	slices.Sort(routes)
	return routes
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler in the current middleware stack.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.middlewares) {
		handler = mw(handler)
	}
	return handler
}

func (r *BasicRouter) mount(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
	r.patterns = append(r.patterns, pattern)
}
