package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/domain"
)

var (
	approvedDoctor = &domain.UserSummary{Username: "house", Role: domain.RoleDoctor, IsApproved: true}
	pendingDoctor  = &domain.UserSummary{Username: "intern", Role: domain.RoleDoctor, IsApproved: false}
	patient        = &domain.UserSummary{Username: "pat", Role: "patient"}
)

func testRoutes() Routes {
	return NewRoutes(config.DefaultRoutes())
}

func TestDecide_Table(t *testing.T) {
	routes := testRoutes()
	ok := func(u *domain.UserSummary) domain.Verification { return domain.Verification{OK: true, User: u} }
	failed := domain.Verification{}

	tests := []struct {
		name string
		in   Input
		want Action
	}{
		{
			name: "protected without cookie redirects to auth with original path",
			in:   Input{Path: "/dashboard/patients", Class: domain.PathProtected},
			want: RedirectTo("/auth?redirect=%2Fdashboard%2Fpatients"),
		},
		{
			name: "protected with failed verification redirects and clears",
			in:   Input{Path: "/settings", Class: domain.PathProtected, HasCookie: true, Verification: failed},
			want: RedirectAndClearCookie("/auth?redirect=%2Fsettings"),
		},
		{
			name: "protected with pending doctor goes to waiting room",
			in:   Input{Path: "/diagnostic-tools/mri", Class: domain.PathProtected, HasCookie: true, Verification: ok(pendingDoctor)},
			want: RedirectTo("/auth/waiting-approval"),
		},
		{
			name: "protected with approved doctor is allowed",
			in:   Input{Path: "/dashboard", Class: domain.PathProtected, HasCookie: true, Verification: ok(approvedDoctor)},
			want: Allow(),
		},
		{
			name: "protected with non-doctor is allowed",
			in:   Input{Path: "/profile", Class: domain.PathProtected, HasCookie: true, Verification: ok(patient)},
			want: Allow(),
		},
		{
			name: "protected with verified session but no user is allowed",
			in:   Input{Path: "/profile", Class: domain.PathProtected, HasCookie: true, Verification: ok(nil)},
			want: Allow(),
		},
		{
			name: "protected ignores verification when cookie is absent",
			in:   Input{Path: "/dashboard", Class: domain.PathProtected, Verification: ok(patient)},
			want: RedirectTo("/auth?redirect=%2Fdashboard"),
		},
		{
			name: "auth with pending doctor goes to waiting room",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: ok(pendingDoctor), RedirectParam: "/settings"},
			want: RedirectTo("/auth/waiting-approval"),
		},
		{
			name: "auth with session resumes redirect param",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: ok(patient), RedirectParam: "/diagnostic-tools/parkinson"},
			want: RedirectTo("/diagnostic-tools/parkinson"),
		},
		{
			name: "auth with session defaults to landing",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: ok(approvedDoctor)},
			want: RedirectTo("/dashboard"),
		},
		{
			name: "auth with session ignores off-site redirect",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: ok(patient), RedirectParam: "https://evil.example/phish"},
			want: RedirectTo("/dashboard"),
		},
		{
			name: "auth with session never loops back to auth",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: ok(patient), RedirectParam: "/auth?redirect=/auth"},
			want: RedirectTo("/dashboard"),
		},
		{
			name: "auth with failed verification stays",
			in:   Input{Path: "/auth", Class: domain.PathAuth, HasCookie: true, Verification: failed},
			want: Allow(),
		},
		{
			name: "auth without cookie stays",
			in:   Input{Path: "/auth", Class: domain.PathAuth},
			want: Allow(),
		},
		{
			name: "other paths always allowed",
			in:   Input{Path: "/pricing", Class: domain.PathOther, HasCookie: true, Verification: failed},
			want: Allow(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.in, routes))
		})
	}
}

func TestDecide_ProtectedWithoutCookieAlwaysCarriesPath(t *testing.T) {
	routes := testRoutes()
	paths := []string{"/dashboard", "/dashboard/alzheimer/results/42", "/settings/security", "/profile", "/diagnostic-tools"}
	for _, p := range paths {
		action := Decide(Input{Path: p, Class: routes.Classify(p)}, routes)
		assert.Equal(t, ActionRedirect, action.Kind, p)
		assert.Equal(t, LoginLocation("/auth", p), action.Location, p)
	}
}

func TestDecide_PendingDoctorNeverAllowedOnProtected(t *testing.T) {
	routes := testRoutes()
	for _, p := range routes.ProtectedPrefixes {
		action := Decide(Input{
			Path:         p + "/x",
			Class:        domain.PathProtected,
			HasCookie:    true,
			Verification: domain.Verification{OK: true, User: pendingDoctor},
		}, routes)
		assert.Equal(t, RedirectTo(routes.WaitingPath), action, p)
	}
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "allow", ActionAllow.String())
	assert.Equal(t, "redirect", ActionRedirect.String())
	assert.Equal(t, "redirect_clear_cookie", ActionRedirectClearCookie.String())
	assert.Equal(t, "unknown", ActionKind(42).String())
}
