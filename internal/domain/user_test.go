package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFromMap(t *testing.T) {
	u := UserFromMap(map[string]any{
		"id":          float64(7),
		"username":    "ghouse",
		"first_name":  "Gregory",
		"last_name":   "House",
		"role":        "doctor",
		"is_approved": true,
		"specialty":   "neurology",
	})

	require.NotNil(t, u)
	assert.Equal(t, RoleDoctor, u.Role)
	assert.True(t, u.IsApproved)
	assert.False(t, u.IsPendingApproval())
	assert.Equal(t, "Dr. Gregory House", u.DisplayName())
	assert.Nil(t, UserFromMap(nil))
}

func TestIsPendingApproval(t *testing.T) {
	tests := []struct {
		name string
		user *UserSummary
		want bool
	}{
		{"nil user", nil, false},
		{"unapproved doctor", &UserSummary{Role: RoleDoctor, IsApproved: false}, true},
		{"approved doctor", &UserSummary{Role: RoleDoctor, IsApproved: true}, false},
		{"patient never pending", &UserSummary{Role: "patient"}, false},
		{"doctor without flag", UserFromMap(map[string]any{"role": "doctor"}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IsPendingApproval())
		})
	}
}

func TestUserSummaryJSONKeepsBackendFields(t *testing.T) {
	var u UserSummary
	require.NoError(t, json.Unmarshal([]byte(`{"username":"x","hospital":"CHU"}`), &u))
	assert.Equal(t, "x", u.Username)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"x","hospital":"CHU"}`, string(out))
}

func TestDisplayNameFallbacks(t *testing.T) {
	assert.Equal(t, "jdoe", (&UserSummary{Username: "jdoe"}).DisplayName())
	assert.Equal(t, "a@b.c", (&UserSummary{Email: "a@b.c"}).DisplayName())
	assert.Equal(t, "Ada Lovelace", (&UserSummary{FirstName: "Ada", LastName: "Lovelace", Role: "admin"}).DisplayName())
}
