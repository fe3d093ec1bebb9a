package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/api/http/handlers"
	"github.com/neurevia/portal-gateway/internal/auth"
	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/guard"
	"github.com/neurevia/portal-gateway/internal/observability"
	"github.com/neurevia/portal-gateway/internal/service"
)

type gateway struct {
	app           *fiber.App
	frontendHits  atomic.Int32
	flakyRequests atomic.Int32
}

// newGateway wires the full route table against a fake backend and renderer.
func newGateway(t *testing.T) *gateway {
	t.Helper()
	gw := &gateway{}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/login/":
			http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "fresh", Path: "/", HttpOnly: true})
			_ = json.NewEncoder(w).Encode(map[string]any{"username": "house", "role": "doctor", "is_approved": true})
			return
		case "/api/logout/":
			w.WriteHeader(http.StatusOK)
			return
		}
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch cookie.Value {
		case "valid":
			_ = json.NewEncoder(w).Encode(map[string]any{"username": "house", "role": "doctor", "is_approved": true})
		case "flaky":
			// Revoked between the edge check and the page's own check.
			if gw.flakyRequests.Add(1) == 1 {
				_ = json.NewEncoder(w).Encode(map[string]any{"username": "house"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(backend.Close)

	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gw.frontendHits.Add(1)
		_, _ = io.WriteString(w, "page:"+r.URL.Path)
	}))
	t.Cleanup(renderer.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	svc := service.NewAuthService(config.APIConfig{BaseURL: backend.URL, TimeoutSeconds: 2}, service.AuthDependencies{Metrics: metrics})
	routes := config.DefaultRoutes()
	sessions := auth.NewSessions(svc, nil, auth.NewTokenManager("secret", time.Minute), auth.SessionsConfig{
		AuthCookie:   routes.CookieName,
		HandleCookie: "neurevia_session",
		AuthPath:     routes.AuthPath,
		CacheTTL:     time.Minute,
	}, logger)

	gw.app = fiber.New()
	RegisterMiddlewares(gw.app, MiddlewareConfig{Logger: logger, Metrics: metrics, RequestTimeout: 5 * time.Second})
	RegisterRoutes(gw.app, RouteConfig{
		Health:   handlers.NewHealthHandler("gw", "test", map[string]handlers.Pinger{"backend": svc}, nil),
		Session:  handlers.NewSessionHandler(sessions, svc, nil, logger),
		Activity: handlers.NewActivityHandler(sessions, nil, 2*time.Second, logger),
		Frontend: handlers.NewFrontendHandler(renderer.URL, logger),
		Guard:    guard.New(guard.NewRoutes(routes), svc, guard.Options{Metrics: metrics, Logger: logger}),
		Sessions: sessions,
		WithAuth: auth.WithAuthConfig{Budget: 2 * time.Second, AuthPath: routes.AuthPath},
		Metrics:  metrics,
	})
	return gw
}

func (gw *gateway) get(t *testing.T, path, cookie string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := gw.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestGateway_PublicPagesForwarded(t *testing.T) {
	gw := newGateway(t)

	resp, body := gw.get(t, "/pricing", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "page:/pricing", body)
}

func TestGateway_ProtectedWithoutCookie(t *testing.T) {
	gw := newGateway(t)

	resp, _ := gw.get(t, "/diagnostic-tools/alzheimer", "")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth?redirect=%2Fdiagnostic-tools%2Falzheimer", resp.Header.Get("Location"))
	assert.Zero(t, gw.frontendHits.Load())
}

func TestGateway_ProtectedWithValidSession(t *testing.T) {
	gw := newGateway(t)

	resp, body := gw.get(t, "/dashboard", "auth_token=valid")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "page:/dashboard", body)
}

func TestGateway_EncodedProtectedPathsNeverForwarded(t *testing.T) {
	gw := newGateway(t)

	for _, p := range []string{"/%64ashboard", "//dashboard", "/./dashboard", "/x/../dashboard", "/DASHBOARD", "/Dashboard/alzheimer"} {
		resp, _ := gw.get(t, p, "")
		assert.Contains(t, []int{http.StatusSeeOther, http.StatusPermanentRedirect}, resp.StatusCode, p)
		assert.NotEqual(t, p, resp.Header.Get("Location"), p)
	}
	assert.Zero(t, gw.frontendHits.Load())

	resp, _ := gw.get(t, "/%64ashboard", "")
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	resp, _ = gw.get(t, resp.Header.Get("Location"), "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth?redirect=%2Fdashboard", resp.Header.Get("Location"))
}

func TestGateway_CaseVariantWithSessionIsGated(t *testing.T) {
	gw := newGateway(t)

	resp, body := gw.get(t, "/DASHBOARD", "auth_token=flaky")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Redirection...")
	assert.Zero(t, gw.frontendHits.Load())
}

func TestGateway_MalformedPathRejected(t *testing.T) {
	gw := newGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RequestURI = "/dash%zzboard"
	resp, err := gw.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, gw.frontendHits.Load())
}

func TestGateway_RevokedSessionClearsCookie(t *testing.T) {
	gw := newGateway(t)

	resp, _ := gw.get(t, "/settings", "auth_token=revoked")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
	assert.Zero(t, gw.frontendHits.Load())
}

func TestGateway_PageCheckCatchesRevocationAfterEdge(t *testing.T) {
	gw := newGateway(t)

	resp, body := gw.get(t, "/profile", "auth_token=flaky")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Redirection...")
	assert.Zero(t, gw.frontendHits.Load())
	assert.Equal(t, int32(2), gw.flakyRequests.Load())
}

func TestGateway_AuthPageWithSession(t *testing.T) {
	gw := newGateway(t)

	resp, _ := gw.get(t, "/auth?redirect=%2Fsettings", "auth_token=valid")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/settings", resp.Header.Get("Location"))

	resp, _ = gw.get(t, "/auth?redirect=https%3A%2F%2Fevil.example", "auth_token=valid")
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestGateway_AuthPageWithoutSessionRendered(t *testing.T) {
	gw := newGateway(t)

	resp, body := gw.get(t, "/auth", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "page:/auth", body)
}

func TestGateway_LoginThenState(t *testing.T) {
	gw := newGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(`{"username":"house","password":"pw"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := gw.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var relayed bool
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value == "fresh" {
			relayed = true
		}
	}
	assert.True(t, relayed)

	resp, body := gw.get(t, "/session/state", "auth_token=valid")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"isAuthenticated":true`)
}

func TestGateway_ActivityRequiresSession(t *testing.T) {
	gw := newGateway(t)

	resp, _ := gw.get(t, "/session/activity", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = gw.get(t, "/session/activity", "auth_token=valid")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGateway_HealthAndMetrics(t *testing.T) {
	gw := newGateway(t)

	resp, _ := gw.get(t, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	gw.get(t, "/dashboard", "")
	resp, body := gw.get(t, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `portal_gateway_guard_decisions_total{action="redirect",class="protected"} 1`)
	assert.Contains(t, body, `portal_gateway_backend_calls_total{operation="ping",outcome="ok"} 1`)
	assert.Contains(t, body, `portal_gateway_http_requests_total{method="GET",route="page:protected",status="303"} 1`)
	assert.Contains(t, body, `portal_gateway_http_requests_total{method="GET",route="/health/ready",status="200"} 1`)
}
