// Package middleware defines the cross-cutting hooks that run around every
// service call, plus a few stock implementations.
package middleware

import (
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Txuritan/enrgy/core/http"
)

// Middleware runs around a service call. Before receives the mutable request
// ahead of the service; After receives the request read-only together with
// the response, and only runs when the service succeeded. Both hooks run in
// registration order for every request.
type Middleware interface {
	Before(r *http.Request)
	After(r *http.Request, res *http.Response)
}

// Funcs adapts plain functions to the Middleware interface. Nil hooks are
// no-ops.
type Funcs struct {
	BeforeFunc func(r *http.Request)
	AfterFunc  func(r *http.Request, res *http.Response)
}

// Before implements Middleware.
func (f Funcs) Before(r *http.Request) {
	if f.BeforeFunc != nil {
		f.BeforeFunc(r)
	}
}

// After implements Middleware.
func (f Funcs) After(r *http.Request, res *http.Response) {
	if f.AfterFunc != nil {
		f.AfterFunc(r, res)
	}
}

// RequestID stamps each request with a process-unique id header before it
// reaches the service.
func RequestID() Middleware {
	var counter atomic.Uint64

	return Funcs{
		BeforeFunc: func(r *http.Request) {
			r.SetHeader("X-Request-ID", strconv.FormatUint(counter.Add(1), 10))
		},
	}
}

// Logger writes one access log line per successfully served request.
func Logger(log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}

	return Funcs{
		AfterFunc: func(r *http.Request, res *http.Response) {
			log.Info("request served",
				zap.String("method", r.Method),
				zap.String("path", r.Path),
				zap.Int("status", res.Status),
				zap.Int("body_bytes", len(res.Body)),
			)
		},
	}
}
