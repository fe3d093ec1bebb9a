package domain

import "time"

// AccessKind names what an access log entry records.
type AccessKind string

const (
	AccessGuardDecision AccessKind = "guard_decision"
	AccessLogin         AccessKind = "login"
	AccessLogout        AccessKind = "logout"
)

// AccessLogEntry is one row of the access audit trail.
type AccessLogEntry struct {
	ID        int64
	EventID   string
	Kind      AccessKind
	Path      string
	PathClass PathClass
	Action    string
	Location  string
	Username  string
	Role      Role
	ClientIP  string
	RequestID string
	CreatedAt time.Time
}

// AccessLogFilter narrows an access log read. Empty fields match everything.
type AccessLogFilter struct {
	Kind     AccessKind
	Username string
	Limit    int
}
