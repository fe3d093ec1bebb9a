package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/neurevia/portal-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGuardDecision EventType = "guard_decision"
	EventSessionLogin  EventType = "session_login"
	EventSessionLogout EventType = "session_logout"
)

// Actor identifies the user behind an event, when known.
type Actor struct {
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// RequestInfo describes the navigation or call that produced an event.
type RequestInfo struct {
	Path      string `json:"path"`
	ClientIP  string `json:"client_ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Event represents something the gateway did on behalf of a browser.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Request   RequestInfo `json:"request"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// GuardDecisionPayload payload.
type GuardDecisionPayload struct {
	PathClass   domain.PathClass `json:"path_class"`
	Action      string           `json:"action"`
	Location    string           `json:"location,omitempty"`
	CookieFound bool             `json:"cookie_found"`
}

// SessionLoginPayload payload.
type SessionLoginPayload struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// NewEvent stamps a fresh event.
func NewEvent(t EventType, actor Actor, req RequestInfo, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Actor:     actor,
		Request:   req,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActorFromUser builds an Actor from a backend user, tolerating nil.
func ActorFromUser(u *domain.UserSummary) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{Username: u.Username, Role: u.Role}
}
