package server

import (
	"net/http"
)

// BasicRouter is a [Router] on top of [http.ServeMux].
//
// Middleware wraps the whole mux, so it also sees requests no route matches,
// such as CORS preflights and 404s.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	handler     http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	mux := http.NewServeMux()
	return &BasicRouter{mux: mux, handler: mux}
}

// Use appends middleware; the first added runs outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
	r.handler = r.Apply(r.mux)
}

// Handle registers handler for method and path. Other methods get a 405 from the mux.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, handler)
}

// Handler registers h under every pattern returned by [Handler.Routes].
func (r *BasicRouter) Handler(h Handler) {
	for _, route := range h.Routes() {
		r.mux.Handle(route, h)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
