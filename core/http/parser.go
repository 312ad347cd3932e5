package http

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRequest marks a request line that does not match
	// "METHOD PATH PROTO".
	ErrInvalidRequest = errors.New("invalid HTTP request line")

	// ErrInvalidHeader marks a header field line without a name or colon.
	ErrInvalidHeader = errors.New("invalid HTTP header field")
)

// ParsedHeader is the result of parsing the header section of a request:
// everything before the CRLFCRLF separator.
type ParsedHeader struct {
	Method  string
	Path    string
	Proto   string
	Headers map[string]string
}

// ParseHeader parses the decoded header text into its request line and
// header fields. Lines are CRLF separated; a bare LF is tolerated.
func ParseHeader(text string) (*ParsedHeader, error) {
	line, rest := cutLine(text)

	sp1 := strings.IndexByte(line, ' ')
	if sp1 <= 0 {
		return nil, ErrInvalidRequest
	}
	sp2 := strings.IndexByte(line[sp1+1:], ' ')
	if sp2 < 0 {
		return nil, ErrInvalidRequest
	}
	sp2 += sp1 + 1

	h := &ParsedHeader{
		Method:  line[:sp1],
		Path:    line[sp1+1 : sp2],
		Proto:   line[sp2+1:],
		Headers: make(map[string]string),
	}
	if h.Path == "" || h.Proto == "" {
		return nil, ErrInvalidRequest
	}

	for rest != "" {
		line, rest = cutLine(rest)
		if line == "" {
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, ErrInvalidHeader
		}

		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if name == "" {
			return nil, ErrInvalidHeader
		}
		h.Headers[name] = value
	}

	return h, nil
}

// cutLine splits off the first line, dropping its CRLF or LF terminator.
func cutLine(s string) (line, rest string) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return s, ""
	}
	line, rest = s[:i], s[i+1:]
	line = strings.TrimSuffix(line, "\r")
	return line, rest
}
