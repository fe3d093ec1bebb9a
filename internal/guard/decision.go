package guard

import "github.com/neurevia/portal-gateway/internal/domain"

// ActionKind tags the outcome of a guard decision.
type ActionKind int

const (
	ActionAllow ActionKind = iota
	ActionRedirect
	ActionRedirectClearCookie
)

func (k ActionKind) String() string {
	switch k {
	case ActionAllow:
		return "allow"
	case ActionRedirect:
		return "redirect"
	case ActionRedirectClearCookie:
		return "redirect_clear_cookie"
	default:
		return "unknown"
	}
}

// Action is what the guard does with a navigation.
type Action struct {
	Kind     ActionKind
	Location string
}

// Allow lets the navigation through.
func Allow() Action { return Action{Kind: ActionAllow} }

// RedirectTo sends the browser to location.
func RedirectTo(location string) Action {
	return Action{Kind: ActionRedirect, Location: location}
}

// RedirectAndClearCookie sends the browser to location and expires the session cookie.
func RedirectAndClearCookie(location string) Action {
	return Action{Kind: ActionRedirectClearCookie, Location: location}
}

// Input is everything a decision depends on. Verification is ignored when
// HasCookie is false.
type Input struct {
	Path          string
	Class         domain.PathClass
	HasCookie     bool
	Verification  domain.Verification
	RedirectParam string
}

// Decide is the guard's decision table. It is pure and fails closed: a protected
// path is only allowed with a cookie that verified and a user not pending approval.
func Decide(in Input, routes Routes) Action {
	switch in.Class {
	case domain.PathProtected:
		login := LoginLocation(routes.AuthPath, in.Path)
		if !in.HasCookie {
			return RedirectTo(login)
		}
		if !in.Verification.OK {
			return RedirectAndClearCookie(login)
		}
		if in.Verification.User.IsPendingApproval() {
			return RedirectTo(routes.WaitingPath)
		}
		return Allow()

	case domain.PathAuth:
		if !in.HasCookie || !in.Verification.OK {
			return Allow()
		}
		if in.Verification.User.IsPendingApproval() {
			return RedirectTo(routes.WaitingPath)
		}
		target := SafeRedirectPath(in.RedirectParam, routes.LandingPath)
		if trimSlash(stripQuery(target)) == trimSlash(routes.AuthPath) {
			target = routes.LandingPath
		}
		return RedirectTo(target)

	default:
		return Allow()
	}
}

func stripQuery(p string) string {
	for i := 0; i < len(p); i++ {
		if p[i] == '?' || p[i] == '#' {
			return p[:i]
		}
	}
	return p
}
