package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/dashboard", "/dashboard"},
		{"/dashboard/", "/dashboard/"},
		{"/%64ashboard", "/dashboard"},
		{"//dashboard", "/dashboard"},
		{"/./dashboard", "/dashboard"},
		{"/x/../dashboard", "/dashboard"},
		{"/../../dashboard", "/dashboard"},
		{`/\dashboard`, "/dashboard"},
		{"/%2Fdashboard", "/dashboard"},
		{"/DASHBOARD", "/DASHBOARD"},
		{"/dashboard/caf%C3%A9", "/dashboard/café"},
		{"", "/"},
	}
	for _, tt := range tests {
		got, err := CanonicalPath(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestCanonicalPath_Malformed(t *testing.T) {
	for _, raw := range []string{"/%zz", "/dash%", "/dashboard%00"} {
		_, err := CanonicalPath(raw)
		assert.ErrorIs(t, err, ErrMalformedPath, raw)
	}
}

func TestEscapePath_StableUnderCanonicalization(t *testing.T) {
	for _, raw := range []string{"/dashboard/caf%C3%A9", "/profile/a b", "/settings/100%25"} {
		canonical, err := CanonicalPath(raw)
		require.NoError(t, err)
		wire := escapePath(canonical)

		again, err := CanonicalPath(wire)
		require.NoError(t, err)
		assert.Equal(t, wire, escapePath(again), raw)
	}
	assert.Equal(t, "/dashboard/caf%C3%A9", escapePath("/dashboard/café"))
}
