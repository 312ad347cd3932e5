package http

// Request is the per-connection mutable request value handed to middleware
// and the resolved service. It is created after parsing succeeds, mutated by
// middleware before-hooks, owned exclusively by the service for the duration
// of Call, and read-only afterwards.
type Request struct {
	Method string
	Path   string
	Proto  string

	// Headers holds the parsed header fields.
	Headers map[string]string

	// Params maps route placeholder names to the matched path segments.
	// Empty for the not-found service.
	Params map[string]string

	// Body is the raw bytes following the header/body separator.
	Body []byte

	// Data is the application's shared data handle. Many requests hold it
	// concurrently; treat it as read-only unless it synchronizes itself.
	Data any
}

// FromParts assembles a Request from a parsed header, raw body, captured
// route parameters and the shared application data handle.
func FromParts(h *ParsedHeader, body []byte, params map[string]string, data any) *Request {
	if params == nil {
		params = map[string]string{}
	}
	return &Request{
		Method:  h.Method,
		Path:    h.Path,
		Proto:   h.Proto,
		Headers: h.Headers,
		Params:  params,
		Body:    body,
		Data:    data,
	}
}

// Header returns the value of a header field, or "" if absent.
func (r *Request) Header(name string) string {
	return r.Headers[name]
}

// SetHeader sets a header field, allocating the map if needed. Intended for
// middleware before-hooks.
func (r *Request) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
}

// Param returns the captured value of a route placeholder, or "" if absent.
func (r *Request) Param(name string) string {
	return r.Params[name]
}
