package http

// Service is application logic bound to a matched route. Call receives
// exclusive access to the request for its duration and returns either a
// response or an application error; the server converts the error to the
// fixed bad-request response.
type Service interface {
	Call(r *Request) (*Response, error)
}

// ServiceFunc adapts a plain function to the Service interface.
type ServiceFunc func(r *Request) (*Response, error)

// Call implements Service.
func (f ServiceFunc) Call(r *Request) (*Response, error) {
	return f(r)
}

// NotFound is the default fallback service: it answers every request with a
// 404 response and always receives an empty parameter mapping.
func NotFound() Service {
	return ServiceFunc(func(r *Request) (*Response, error) {
		return Text(StatusNotFound, "404 page not found"), nil
	})
}
