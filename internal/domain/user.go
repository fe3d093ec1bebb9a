package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the backend-assigned account role.
type Role string

const (
	RoleDoctor Role = "doctor"
)

// UserSummary is the user object returned by the backend. Typed fields cover what the
// gateway reads; Attributes keeps the full payload so it can be echoed unchanged.
type UserSummary struct {
	ID         any
	Username   string
	Email      string
	FirstName  string
	LastName   string
	Role       Role
	IsApproved bool
	Attributes map[string]any
}

// UserFromMap builds a UserSummary from a decoded JSON object.
func UserFromMap(m map[string]any) *UserSummary {
	if m == nil {
		return nil
	}
	u := &UserSummary{Attributes: m}
	u.ID = m["id"]
	u.Username = stringField(m, "username")
	u.Email = stringField(m, "email")
	u.FirstName = stringField(m, "first_name")
	u.LastName = stringField(m, "last_name")
	u.Role = Role(stringField(m, "role"))
	if approved, ok := m["is_approved"].(bool); ok {
		u.IsApproved = approved
	}
	return u
}

// IsPendingApproval reports whether a doctor account still awaits approval.
// A doctor without an explicit is_approved=true is treated as pending.
func (u *UserSummary) IsPendingApproval() bool {
	return u != nil && u.Role == RoleDoctor && !u.IsApproved
}

// DisplayName returns the name shown in the dashboard header.
func (u *UserSummary) DisplayName() string {
	if u == nil {
		return ""
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		if u.Role == RoleDoctor {
			return "Dr. " + full
		}
		return full
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// MarshalJSON echoes the backend payload when available.
func (u UserSummary) MarshalJSON() ([]byte, error) {
	if u.Attributes != nil {
		return json.Marshal(u.Attributes)
	}
	out := map[string]any{
		"username":    u.Username,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"role":        string(u.Role),
		"is_approved": u.IsApproved,
	}
	if u.ID != nil {
		out["id"] = u.ID
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes any JSON object into a UserSummary.
func (u *UserSummary) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}
	if m == nil {
		*u = UserSummary{}
		return nil
	}
	*u = *UserFromMap(m)
	return nil
}

// Profile is the payload of the backend profile endpoint.
type Profile struct {
	User        *UserSummary
	DisplayName string
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
