// Package server exposes the catalog client over a small read-only HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it is added: the first registered is the outermost wrapper.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /search") internally, so requests
// with the wrong method get a 405 from the mux itself.
//
// # Catalog Handler
//
// [CatalogHandler] serves:
//
//	GET /search?q=...&type=track,album&filter=artist:Muse&market=US&limit=5&offset=0
//	GET /lookup/{type}/{id}
//	GET /healthz
//
// [NewRouter] adds GET /metrics when given a Prometheus registry.
//
// Successful responses are the catalog's JSON passed through unchanged. Errors are JSON objects with an
// "error" field and a status derived from the error kind (400 for bad input, 502 for upstream failures,
// 504 for timeouts).
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
