package core

import (
	"bytes"
	"errors"
	"io"
	"net"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Txuritan/enrgy/app"
	"github.com/Txuritan/enrgy/core/http"
)

var crlfcrlf = []byte("\r\n\r\n")

// workItem is one accepted connection together with the snapshot it is
// served against. Produced by the acceptor, consumed by exactly one worker.
type workItem struct {
	app  *app.BuiltApp
	conn net.Conn
	addr net.Addr
}

// handleConn is the pool handler. It is total: every accepted connection
// gets exactly one written response, either the real one or the fixed
// bad-request fallback, and no failure escapes to the pool.
func (s *Server) handleConn(it workItem) {
	defer it.conn.Close()

	err := s.serveConn(it)
	if err == nil {
		s.stats.responses.Add(1)
		return
	}

	s.stats.fallbacks.Add(1)

	if _, werr := it.conn.Write(http.BadRequest().Bytes()); werr != nil {
		// The fallback itself could not be delivered; tear the
		// connection down in both directions and tell the logger, since
		// there is no response left to carry the failure.
		forceClose(it.conn)
		s.log.Warn("failed to write fallback response",
			zap.Stringer("peer", it.addr),
			zap.String("kind", errorKind(err).String()),
			zap.NamedError("cause", err),
			zap.Error(werr),
		)
		return
	}

	s.log.Debug("connection degraded to fallback response",
		zap.Stringer("peer", it.addr),
		zap.String("kind", errorKind(err).String()),
		zap.Error(err),
	)
}

// serveConn runs the request pipeline: read, frame, decode, parse, route,
// middleware, service, write. Any returned error is a *ConnError.
func (s *Server) serveConn(it workItem) error {
	raw, err := s.readStream(it.conn)
	if err != nil {
		return connErr(KindTransport, err)
	}

	header, body := splitRequest(raw)

	if !utf8.Valid(header) {
		return connErr(KindEncoding, ErrHeaderEncoding)
	}

	parsed, err := http.ParseHeader(string(header))
	if err != nil {
		return connErr(KindProtocol, err)
	}

	svc, captured := it.app.Resolve(parsed.Method, parsed.Path)

	params := make(map[string]string, len(captured))
	for _, p := range captured {
		params[p.Name] = p.Value
	}

	req := http.FromParts(parsed, body, params, it.app.Data())

	for _, m := range it.app.Middleware() {
		m.Before(req)
	}

	res, err := svc.Call(req)
	if err != nil {
		return connErr(KindApplication, err)
	}

	// After-hooks only run on the success path, with the request now
	// read-only.
	for _, m := range it.app.Middleware() {
		m.After(req, res)
	}

	if _, err := it.conn.Write(res.Bytes()); err != nil {
		return connErr(KindTransport, err)
	}

	return nil
}

// readStream reads the connection in fixed-size chunks until the peer closes
// or the total cap is reached. The cap bounds memory spent on a single
// connection regardless of client behavior; nothing past it is read or
// allocated.
func (s *Server) readStream(conn net.Conn) ([]byte, error) {
	chunkSize := s.cfg.ReadChunkSize
	maxBytes := s.cfg.MaxRequestBytes

	chunk := s.bufs.Get(chunkSize)
	chunk = chunk[:chunkSize]
	defer s.bufs.Put(chunk)

	// The result backs the request's header and body slices, so it cannot
	// come from the pool.
	data := make([]byte, 0, chunkSize)

	for len(data) < maxBytes {
		limit := chunkSize
		if remaining := maxBytes - len(data); remaining < limit {
			limit = remaining
		}

		n, err := conn.Read(chunk[:limit])
		if n > 0 {
			data = append(data, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}

	return data, nil
}

// splitRequest splits the raw bytes at the first CRLFCRLF. The header keeps
// the trailing CRLF of its final line; the body is everything after the
// separator. Without a separator the whole buffer is header material.
func splitRequest(raw []byte) (header, body []byte) {
	i := bytes.Index(raw, crlfcrlf)
	if i < 0 {
		return raw, nil
	}
	return raw[:i+2], raw[i+4:]
}

// forceClose shuts the connection down in both directions, mirroring a
// failed fallback write where nothing more can be salvaged. Wrapped
// connections that hide half-close, such as those handed out by a limited
// listener, are left to the handler's deferred Close.
func forceClose(conn net.Conn) {
	type closer interface {
		CloseRead() error
		CloseWrite() error
	}
	if c, ok := conn.(closer); ok {
		_ = c.CloseRead()
		_ = c.CloseWrite()
	}
}

// errorKind extracts the taxonomy kind from a pipeline error.
func errorKind(err error) ErrorKind {
	var ce *ConnError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransport
}
