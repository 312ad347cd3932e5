package http

import (
	"errors"
	"testing"
)

// TestParseHeaderBasic tests request line and header field parsing
func TestParseHeaderBasic(t *testing.T) {
	h, err := ParseHeader("GET /users/42 HTTP/1.1\r\nHost: x\r\nAccept: */*\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Method != "GET" {
		t.Errorf("method: expected GET, got %q", h.Method)
	}
	if h.Path != "/users/42" {
		t.Errorf("path: expected /users/42, got %q", h.Path)
	}
	if h.Proto != "HTTP/1.1" {
		t.Errorf("proto: expected HTTP/1.1, got %q", h.Proto)
	}
	if h.Headers["Host"] != "x" {
		t.Errorf("Host header: expected x, got %q", h.Headers["Host"])
	}
	if h.Headers["Accept"] != "*/*" {
		t.Errorf("Accept header: expected */*, got %q", h.Headers["Accept"])
	}
}

// TestParseHeaderRequestLineOnly tests a header section without fields
func TestParseHeaderRequestLineOnly(t *testing.T) {
	h, err := ParseHeader("GET / HTTP/1.1\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Headers) != 0 {
		t.Errorf("expected no headers, got %v", h.Headers)
	}
}

// TestParseHeaderBareLF tests tolerance for LF-only line endings
func TestParseHeaderBareLF(t *testing.T) {
	h, err := ParseHeader("POST /submit HTTP/1.1\nContent-Type: text/plain\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Method != "POST" || h.Path != "/submit" {
		t.Errorf("got method=%q path=%q", h.Method, h.Path)
	}
	if h.Headers["Content-Type"] != "text/plain" {
		t.Errorf("Content-Type: got %q", h.Headers["Content-Type"])
	}
}

// TestParseHeaderHeaderValueWithColon tests values containing colons
func TestParseHeaderHeaderValueWithColon(t *testing.T) {
	h, err := ParseHeader("GET / HTTP/1.1\r\nReferer: http://example.com/\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Headers["Referer"] != "http://example.com/" {
		t.Errorf("Referer: got %q", h.Headers["Referer"])
	}
}

// TestParseHeaderErrors tests the protocol error cases
func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrInvalidRequest},
		{"missing path and proto", "GET\r\n", ErrInvalidRequest},
		{"missing proto", "GET /\r\n", ErrInvalidRequest},
		{"empty proto", "GET / \r\n", ErrInvalidRequest},
		{"leading space", " GET / HTTP/1.1\r\n", ErrInvalidRequest},
		{"header without colon", "GET / HTTP/1.1\r\nHost\r\n", ErrInvalidHeader},
		{"header without name", "GET / HTTP/1.1\r\n: x\r\n", ErrInvalidHeader},
	}

	for _, tt := range tests {
		_, err := ParseHeader(tt.text)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}
