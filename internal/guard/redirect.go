package guard

import (
	"net/url"
	"strings"
)

// SafeRedirectPath returns candidate when it is a same-origin absolute path and
// fallback otherwise. Scheme-relative (//host), backslash and absolute URLs are
// rejected.
func SafeRedirectPath(candidate, fallback string) string {
	if candidate == "" {
		return fallback
	}
	if !strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return fallback
	}
	if strings.ContainsAny(candidate, "\r\n\t") {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return candidate
}

// LoginLocation builds the auth page URL that resumes at path after login.
func LoginLocation(authPath, path string) string {
	return authPath + "?redirect=" + url.QueryEscape(path)
}
