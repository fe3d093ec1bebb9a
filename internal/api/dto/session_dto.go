package dto

import (
	"time"

	"github.com/neurevia/portal-gateway/internal/domain"
)

// LoginRequest payload for POST /session/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=256"`
}

// Credentials converts the payload for the backend.
func (r LoginRequest) Credentials() domain.LoginCredentials {
	return domain.LoginCredentials{Username: r.Username, Password: r.Password}
}

// LoginResponse mirrors the backend login outcome so the form can show data.error.
type LoginResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

// LogoutResponse is returned to callers that ask for JSON instead of a redirect.
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}

// ProfileResponse feeds the dashboard header.
type ProfileResponse struct {
	DisplayName string              `json:"display_name"`
	Profile     *domain.UserSummary `json:"profile"`
}

// StateResponse is the session snapshot served to the portal. HydratedUser is the
// copy cached at login and is only sent while the state is still loading; it is
// not an authentication answer.
type StateResponse struct {
	IsAuthenticated *bool               `json:"isAuthenticated"`
	User            *domain.UserSummary `json:"user"`
	Loading         bool                `json:"loading"`
	HydratedUser    *domain.UserSummary `json:"hydratedUser,omitempty"`
}

// ActivityQuery filters GET /session/activity.
type ActivityQuery struct {
	Kind  string `query:"kind" validate:"omitempty,oneof=guard_decision login logout"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ActivityEntry is one access log row as shown to its owner.
type ActivityEntry struct {
	Kind     string    `json:"kind"`
	Path     string    `json:"path"`
	Action   string    `json:"action"`
	Location string    `json:"location,omitempty"`
	ClientIP string    `json:"client_ip"`
	At       time.Time `json:"at"`
}

// ActivityResponse lists the caller's recent access history.
type ActivityResponse struct {
	Username string          `json:"username"`
	Entries  []ActivityEntry `json:"entries"`
}
