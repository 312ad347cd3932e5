package http

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Common status codes.
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNoContent:           "No Content",
	StatusBadRequest:          "Bad Request",
	StatusUnauthorized:        "Unauthorized",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusTooManyRequests:     "Too Many Requests",
	StatusInternalServerError: "Internal Server Error",
}

// StatusText returns the reason phrase for a status code.
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown"
}

// headerField keeps response headers in the order they were set.
type headerField struct {
	name  string
	value string
}

// Response is the value produced by a service (or the fallback path). It is
// serialized to bytes exactly once per connection.
type Response struct {
	Status  int
	headers []headerField
	Body    []byte
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{Status: status}
}

// Text creates a text/plain response.
func Text(status int, body string) *Response {
	r := NewResponse(status)
	r.SetHeader("Content-Type", "text/plain; charset=utf-8")
	r.Body = []byte(body)
	return r
}

// JSON creates an application/json response. Marshal failures degrade to an
// internal server error.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Text(StatusInternalServerError, "500 internal server error")
	}
	r := NewResponse(status)
	r.SetHeader("Content-Type", "application/json")
	r.Body = body
	return r
}

// BadRequest is the fixed fallback response written whenever handling a
// connection fails for any reason.
func BadRequest() *Response {
	return Text(StatusBadRequest, "400 bad request")
}

// SetHeader sets a header field, replacing an earlier value for the same
// name while keeping first-set ordering.
func (r *Response) SetHeader(name, value string) {
	for i := range r.headers {
		if r.headers[i].name == name {
			r.headers[i].value = value
			return
		}
	}
	r.headers = append(r.headers, headerField{name: name, value: value})
}

// Header returns the value of a response header, or "" if absent.
func (r *Response) Header(name string) string {
	for i := range r.headers {
		if r.headers[i].name == name {
			return r.headers[i].value
		}
	}
	return ""
}

// Bytes serializes the response: status line, headers in set order, a
// Content-Length computed from the body, then the body itself.
func (r *Response) Bytes() []byte {
	buf := make([]byte, 0, 128+len(r.Body))

	buf = append(buf, "HTTP/1.1 "...)
	buf = strconv.AppendInt(buf, int64(r.Status), 10)
	buf = append(buf, ' ')
	buf = append(buf, StatusText(r.Status)...)
	buf = append(buf, "\r\n"...)

	for _, h := range r.headers {
		// The computed length below is authoritative.
		if strings.EqualFold(h.name, "Content-Length") {
			continue
		}
		buf = append(buf, h.name...)
		buf = append(buf, ": "...)
		buf = append(buf, h.value...)
		buf = append(buf, "\r\n"...)
	}

	buf = append(buf, "Content-Length: "...)
	buf = strconv.AppendInt(buf, int64(len(r.Body)), 10)
	buf = append(buf, "\r\n\r\n"...)

	return append(buf, r.Body...)
}
