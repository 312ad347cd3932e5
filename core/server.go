// Package core implements the connection-dispatch core: the server
// lifecycle, the accept loop and the per-connection request pipeline running
// on a fixed worker pool.
package core

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/Txuritan/enrgy/app"
	"github.com/Txuritan/enrgy/config"
	"github.com/Txuritan/enrgy/core/pools"
)

// Server dispatches accepted connections to a fixed worker pool against an
// immutable application snapshot. It is built unbound, fixed to an address
// with Bind and started with Run.
type Server struct {
	app   *app.BuiltApp
	cfg   *config.Config
	log   *zap.Logger
	clock quartz.Clock
	bufs  *pools.BytePool

	addr string

	mu      sync.Mutex
	ln      net.Listener
	pool    *pools.Pool[workItem]
	running bool

	stats struct {
		accepted  atomic.Uint64
		responses atomic.Uint64
		fallbacks atomic.Uint64
	}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the runtime configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets the logger used for lifecycle events and for failures that
// have no response left to carry them.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock substitutes the clock driving the pool's poll timers. Intended
// for tests.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// New creates an unbound server around a built application snapshot.
func New(built *app.BuiltApp, opts ...Option) *Server {
	s := &Server{
		app:  built,
		cfg:  config.Default(),
		log:  zap.NewNop(),
		bufs: pools.NewBytePool(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind fixes the listen address, yielding a runnable server.
func (s *Server) Bind(addr string) *Server {
	s.addr = addr
	return s
}

// Run binds the listener and serves until the accept loop ends and every
// worker has exited. Binding is the only startup-time failure; afterwards
// Run blocks, normally indefinitely, until Shutdown is called or accepting
// fails.
func (s *Server) Run() error {
	if s.addr == "" {
		return ErrNotBound
	}

	lc := net.ListenConfig{Control: listenControl}
	ln, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}

	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	return s.serve(ln)
}

// serve wires the pool and the acceptor together around an already bound
// listener and blocks until both are done.
func (s *Server) serve(ln net.Listener) error {
	pool, producer := pools.Spawn(pools.Config{
		Size:         s.cfg.Workers,
		PollInterval: s.cfg.PollInterval,
		Clock:        s.clock,
	}, s.handleConn)

	s.mu.Lock()
	s.ln = ln
	s.pool = pool
	s.running = true
	s.mu.Unlock()

	s.log.Info("server listening",
		zap.Stringer("addr", ln.Addr()),
		zap.Int("workers", pool.Size()),
	)

	var g errgroup.Group
	g.Go(func() error {
		defer producer.Close()
		s.acceptLoop(ln, producer)
		return nil
	})

	pool.Wait()

	// Unblock the acceptor if the workers exited first.
	ln.Close()

	return g.Wait()
}

// acceptLoop feeds accepted connections into the pool. It ends when accept
// fails or the pool stops taking items; no connection is retried.
func (s *Server) acceptLoop(ln net.Listener, producer *pools.Producer[workItem]) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.log.Debug("accept loop ending", zap.Error(err))
			return
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}

		s.stats.accepted.Add(1)

		item := workItem{app: s.app, conn: conn, addr: conn.RemoteAddr()}
		if err := producer.Send(item); err != nil {
			conn.Close()
			s.log.Debug("accept loop ending", zap.Error(err))
			return
		}
	}
}

// Shutdown closes the listener so the accept loop exits, then joins the
// pool. Workers observe shutdown at their next idle poll boundary; queued
// and in-flight connections are still served.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	ln, pool, running := s.ln, s.pool, s.running
	s.mu.Unlock()

	if !running {
		return ErrNotRunning
	}

	s.log.Info("shutting down")

	ln.Close()
	pool.Join()
	return nil
}

// Addr returns the bound listener address, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stats contains server counters.
type Stats struct {
	Accepted  uint64
	Responses uint64
	Fallbacks uint64
	Pool      pools.Stats
}

// Stats returns a point-in-time snapshot of the server counters.
func (s *Server) Stats() Stats {
	st := Stats{
		Accepted:  s.stats.accepted.Load(),
		Responses: s.stats.responses.Load(),
		Fallbacks: s.stats.fallbacks.Load(),
	}

	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()

	if pool != nil {
		st.Pool = pool.Stats()
	}
	return st
}
