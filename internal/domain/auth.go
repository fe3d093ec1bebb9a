package domain

import "net/http"

// LoginCredentials are relayed verbatim to the backend login endpoint.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the normalized outcome of a check-auth call.
type AuthResult struct {
	Authenticated bool         `json:"authenticated"`
	User          *UserSummary `json:"user,omitempty"`
}

// Verification is the guard's view of a check-auth call: OK iff the backend
// answered with a success status.
type Verification struct {
	OK   bool
	User *UserSummary
}

// PathClass classifies a navigated pathname against the route table.
type PathClass string

const (
	PathProtected PathClass = "protected"
	PathAuth      PathClass = "auth"
	PathOther     PathClass = "other"
)

// LoginResult mirrors the backend login response. Data is the parsed body whatever
// the status, so callers can surface the backend's own error message.
type LoginResult struct {
	Success bool
	Status  int
	Data    map[string]any
	Cookies []*http.Cookie
}

// ErrorMessage returns the backend-provided error text, if any.
func (r LoginResult) ErrorMessage() string {
	for _, key := range []string{"error", "detail", "message"} {
		if msg, ok := r.Data[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}

// LogoutRequest identifies the browser session to end.
type LogoutRequest struct {
	CookieHeader string
	CacheKey     string
}
