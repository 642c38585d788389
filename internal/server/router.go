package server

import (
	"net/http"
	"sort"
	"strings"
)

// BasicRouter is the [Router] the bot serves webhook and health routes through.
//
// Paths may be registered for several methods; anything else gets 405 with an Allow header.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      map[string]map[string]http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:    http.NewServeMux(),
		routes: map[string]map[string]http.Handler{},
	}
}

// Use appends [Middleware]; the first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path. Registering the same pair twice replaces the handler.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	methods, ok := r.routes[path]
	if !ok {
		methods = map[string]http.Handler{}
		r.routes[path] = methods
		r.mux.Handle(path, r.Apply(r.dispatch(path)))
	}
	methods[method] = handler
	if method == http.MethodGet {
		if _, hasHead := methods[http.MethodHead]; !hasHead {
			methods[http.MethodHead] = handler
		}
	}
}

// Handler registers every route of handler for each of its methods through [BasicRouter.Handle].
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		for _, method := range handler.Methods() {
			r.Handle(method, route, handler)
		}
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

func (r *BasicRouter) dispatch(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		methods := r.routes[path]
		if h, ok := methods[req.Method]; ok {
			h.ServeHTTP(w, req)
			return
		}

		allowed := make([]string, 0, len(methods))
		for m := range methods {
			allowed = append(allowed, m)
		}
		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}
