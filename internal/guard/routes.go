package guard

import (
	"strings"

	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/domain"
)

// Routes is the fixed route table the guard evaluates navigations against.
type Routes struct {
	CookieName        string
	AuthPath          string
	WaitingPath       string
	LandingPath       string
	ProtectedPrefixes []string
}

// NewRoutes copies the configured route table.
func NewRoutes(cfg config.RoutesConfig) Routes {
	return Routes{
		CookieName:        cfg.CookieName,
		AuthPath:          cfg.AuthPath,
		WaitingPath:       cfg.WaitingPath,
		LandingPath:       cfg.LandingPath,
		ProtectedPrefixes: append([]string(nil), cfg.ProtectedPrefixes...),
	}
}

// Matches reports whether the guard runs for path at all: any protected prefix
// or anything under the auth path. Paths are compared canonical and case-folded.
func (r Routes) Matches(path string) bool {
	path = routeKey(path)
	if underPrefix(path, r.AuthPath) {
		return true
	}
	for _, prefix := range r.ProtectedPrefixes {
		if underPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Classify maps a pathname to its class. Only the exact auth path is PathAuth;
// other pages under it (waiting room, register) are PathOther.
func (r Routes) Classify(path string) domain.PathClass {
	path = routeKey(path)
	if trimSlash(path) == trimSlash(strings.ToLower(r.AuthPath)) {
		return domain.PathAuth
	}
	for _, prefix := range r.ProtectedPrefixes {
		if underPrefix(path, prefix) {
			return domain.PathProtected
		}
	}
	return domain.PathOther
}

// underPrefix is a segment-aware prefix test: /dashboard matches /dashboard and
// /dashboard/x but not /dashboards.
func underPrefix(path, prefix string) bool {
	prefix = trimSlash(strings.ToLower(prefix))
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}
