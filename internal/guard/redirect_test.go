package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirectPath(t *testing.T) {
	const fallback = "/dashboard"
	tests := []struct {
		in   string
		want string
	}{
		{"", fallback},
		{"/settings", "/settings"},
		{"/diagnostic-tools/mri?case=3", "/diagnostic-tools/mri?case=3"},
		{"//evil.example.com", fallback},
		{"/\\evil.example.com", fallback},
		{"https://evil.example.com/x", fallback},
		{"javascript:alert(1)", fallback},
		{"dashboard", fallback},
		{"/ok\r\nSet-Cookie: x=1", fallback},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeRedirectPath(tt.in, fallback), tt.in)
	}
}

func TestLoginLocation(t *testing.T) {
	assert.Equal(t, "/auth?redirect=%2Fsettings%2Fsecurity", LoginLocation("/auth", "/settings/security"))
}
