// Package app assembles routes, middleware and shared data into the
// immutable snapshot the server dispatches against.
package app

import (
	"github.com/Txuritan/enrgy/core/http"
	"github.com/Txuritan/enrgy/core/middleware"
	"github.com/Txuritan/enrgy/core/router"
)

// App is the unbound builder stage: it collects route registrations,
// middleware and shared application data until Build is called.
type App struct {
	router     *router.Router
	middleware []middleware.Middleware
	data       any
	notFound   http.Service
}

// New creates an empty application builder.
func New() *App {
	return &App{
		router:   router.New(),
		notFound: http.NotFound(),
	}
}

// Route registers a service under a method and path pattern.
func (a *App) Route(method, path string, svc http.Service) *App {
	a.router.Add(method, path, svc)
	return a
}

// GET registers a GET route.
func (a *App) GET(path string, svc http.Service) *App {
	return a.Route("GET", path, svc)
}

// POST registers a POST route.
func (a *App) POST(path string, svc http.Service) *App {
	return a.Route("POST", path, svc)
}

// PUT registers a PUT route.
func (a *App) PUT(path string, svc http.Service) *App {
	return a.Route("PUT", path, svc)
}

// DELETE registers a DELETE route.
func (a *App) DELETE(path string, svc http.Service) *App {
	return a.Route("DELETE", path, svc)
}

// PATCH registers a PATCH route.
func (a *App) PATCH(path string, svc http.Service) *App {
	return a.Route("PATCH", path, svc)
}

// HEAD registers a HEAD route.
func (a *App) HEAD(path string, svc http.Service) *App {
	return a.Route("HEAD", path, svc)
}

// OPTIONS registers an OPTIONS route.
func (a *App) OPTIONS(path string, svc http.Service) *App {
	return a.Route("OPTIONS", path, svc)
}

// Use appends a middleware. Hooks run in the order they were added.
func (a *App) Use(m middleware.Middleware) *App {
	a.middleware = append(a.middleware, m)
	return a
}

// Data sets the shared application data handle passed to every request.
func (a *App) Data(v any) *App {
	a.data = v
	return a
}

// NotFound replaces the fallback service used when no route matches.
func (a *App) NotFound(svc http.Service) *App {
	if svc != nil {
		a.notFound = svc
	}
	return a
}

// Build assembles the immutable snapshot. The snapshot is shared by pointer
// with every worker and must never be mutated after this point.
func (a *App) Build() *BuiltApp {
	mw := make([]middleware.Middleware, len(a.middleware))
	copy(mw, a.middleware)

	return &BuiltApp{
		router:     a.router,
		middleware: mw,
		data:       a.data,
		notFound:   a.notFound,
	}
}

// BuiltApp is the immutable application snapshot: per-method routing trees,
// the ordered middleware list, the shared data handle and the not-found
// fallback. It is constructed once before serving and read concurrently by
// every worker without locking.
type BuiltApp struct {
	router     *router.Router
	middleware []middleware.Middleware
	data       any
	notFound   http.Service
}

// Resolve looks up the service for a method and path. When no route matches
// it returns the not-found service with no captured parameters.
func (b *BuiltApp) Resolve(method, path string) (http.Service, []router.Param) {
	if tree := b.router.Lookup(method); tree != nil {
		if svc, params, ok := tree.Find(path); ok {
			return svc, params
		}
	}
	return b.notFound, nil
}

// Middleware returns the ordered middleware list.
func (b *BuiltApp) Middleware() []middleware.Middleware {
	return b.middleware
}

// Data returns the shared application data handle.
func (b *BuiltApp) Data() any {
	return b.data
}
