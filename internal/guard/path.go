package guard

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrMalformedPath is returned for request paths that cannot be decoded.
var ErrMalformedPath = errors.New("malformed request path")

// CanonicalPath returns the pathname the page renderer will resolve raw to: one
// round of percent-decoding, backslashes read as slashes, repeated slashes
// collapsed and dot segments removed. A trailing slash is kept. Case is left
// alone; route matching folds it.
func CanonicalPath(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil || strings.ContainsRune(decoded, 0) {
		return "", ErrMalformedPath
	}
	decoded = strings.ReplaceAll(decoded, `\`, "/")
	if !strings.HasPrefix(decoded, "/") {
		decoded = "/" + decoded
	}

	clean := path.Clean(decoded)
	if clean != "/" && strings.HasSuffix(decoded, "/") {
		clean += "/"
	}
	return clean, nil
}

// escapePath is the wire form of a canonical path. Escaping and canonicalizing
// are stable under repetition, so redirecting to it cannot loop.
func escapePath(canonical string) string {
	u := url.URL{Path: canonical}
	return u.EscapedPath()
}

func canonicalURL(canonical, rawQuery string) string {
	u := url.URL{Path: canonical, RawQuery: rawQuery}
	return u.RequestURI()
}

// routeKey is the form paths are compared in: canonical and lower-cased, since
// the router and the renderer resolve paths case-insensitively.
func routeKey(p string) string {
	if canonical, err := CanonicalPath(p); err == nil {
		p = canonical
	}
	return strings.ToLower(p)
}
