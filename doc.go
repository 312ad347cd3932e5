/*
Package enrgy is a minimal from-scratch HTTP server built around a fixed
thread pool with cooperative shutdown.

The server accepts TCP connections, reads and frames raw request bytes,
resolves a route, runs a middleware pipeline around an application service
and writes the response. Every per-connection failure degrades to a fixed
bad-request response instead of propagating.

Design points

  - Fixed worker pool: N workers share one queue; each claims one connection
    and runs it to completion before claiming the next
  - Cooperative shutdown: workers observe the shutdown flag only at idle
    poll boundaries, so in-flight requests are never interrupted
  - Bounded reads: request bytes are read in fixed-size chunks up to a hard
    cap, limiting what a slow or hostile client can cost
  - Immutable snapshot: routes, middleware and shared data are assembled
    once before serving and shared lock-free across workers
  - Failure containment: transport, encoding, protocol and application
    errors all collapse to one bad-request response per connection

Quick Start

Basic usage example:

	package main

	import (
	    "github.com/Txuritan/enrgy/app"
	    "github.com/Txuritan/enrgy/core"
	    "github.com/Txuritan/enrgy/core/http"
	)

	func main() {
	    application := app.New().
	        GET("/hello/:name", http.ServiceFunc(func(r *http.Request) (*http.Response, error) {
	            return http.Text(http.StatusOK, "Hello, "+r.Param("name")+"!"), nil
	        }))

	    srv := core.New(application.Build()).Bind(":8080")
	    if err := srv.Run(); err != nil {
	        panic(err)
	    }
	}

Modules

The module is organized into several packages:

  - app: application builder and immutable snapshot
  - config: configuration loading (defaults, file, environment)
  - core: server lifecycle, acceptor and request pipeline
  - core/http: request/response values, header parser, service contract
  - core/router: per-method radix routing with parameter capture
  - core/middleware: before/after middleware contract
  - core/pools: fixed worker pool and byte buffer pool

Not implemented: chunked transfer-encoding, persistent connections,
pipelining, TLS and per-request timeouts.
*/
package enrgy
