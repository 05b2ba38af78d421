// Package uri implements the registry's opaque URI value type:
// protocol:path[?query].
package uri

import (
	"fmt"
	"strings"
)

// URI is an immutable protocol:path[?query] value. The zero value is not
// valid; construct with Parse or New.
type URI struct {
	protocol string
	path     string
	query    string
	hasQuery bool
}

// New builds a URI from its parts directly, without going through Parse.
func New(protocol, path string) URI {
	return URI{protocol: protocol, path: path}
}

// NewWithQuery builds a URI with an explicit query component.
func NewWithQuery(protocol, path, query string) URI {
	return URI{protocol: protocol, path: path, query: query, hasQuery: true}
}

// Parse splits on the first ':' then the first '?'. An input with no ':' is
// rejected.
func Parse(s string) (URI, error) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return URI{}, fmt.Errorf("uri: missing protocol separator in %q", s)
	}
	protocol := s[:colon]
	rest := s[colon+1:]

	var path, query string
	hasQuery := false
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		path = rest[:q]
		query = rest[q+1:]
		hasQuery = true
	} else {
		path = rest
	}
	return URI{protocol: protocol, path: path, query: query, hasQuery: hasQuery}, nil
}

// Protocol returns the scheme, e.g. "asset".
func (u URI) Protocol() string { return u.protocol }

// Path returns the raw path component, slash-joined.
func (u URI) Path() string { return u.path }

// PathElements splits Path on '/'.
func (u URI) PathElements() []string {
	if u.path == "" {
		return nil
	}
	return strings.Split(u.path, "/")
}

// Query returns the raw query component and whether one was present.
func (u URI) Query() (string, bool) { return u.query, u.hasQuery }

// String is the exact round-trip of the parsed form.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.protocol)
	b.WriteByte(':')
	b.WriteString(u.path)
	if u.hasQuery {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	return b.String()
}
