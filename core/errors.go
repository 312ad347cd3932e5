package core

import "errors"

// Error definitions
var (
	// ErrNotBound is returned by Run when no listen address was fixed.
	ErrNotBound = errors.New("server is not bound to an address")

	// ErrNotRunning is returned by Shutdown before Run has started serving.
	ErrNotRunning = errors.New("server is not running")

	// ErrHeaderEncoding marks a header section that is not valid UTF-8.
	ErrHeaderEncoding = errors.New("header section is not valid UTF-8")
)

// ErrorKind classifies a per-connection failure. Every kind is caught at the
// connection boundary and converted to the fixed bad-request response.
type ErrorKind int

const (
	// KindTransport is a socket read or write failure.
	KindTransport ErrorKind = iota
	// KindEncoding is invalid text in the header section.
	KindEncoding
	// KindProtocol is a malformed header grammar.
	KindProtocol
	// KindApplication is an error reported by the service.
	KindApplication
)

// String returns the kind's name for log fields.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEncoding:
		return "encoding"
	case KindProtocol:
		return "protocol"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// ConnError wraps a per-connection failure with its taxonomy kind.
type ConnError struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *ConnError) Error() string {
	return e.Kind.String() + " error: " + e.Err.Error()
}

// Unwrap exposes the underlying cause.
func (e *ConnError) Unwrap() error {
	return e.Err
}

func connErr(kind ErrorKind, err error) *ConnError {
	return &ConnError{Kind: kind, Err: err}
}
