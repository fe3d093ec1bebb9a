package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/observability"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

const (
	loginPath     = "/api/login/"
	logoutPath    = "/api/logout/"
	checkAuthPath = "/api/check-auth/"
	profilePath   = "/api/profile/"
)

// HTTPDoer is the transport used to reach the backend. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuxiliaryStore holds client-side session data kept outside the auth cookie.
type AuxiliaryStore interface {
	Delete(ctx context.Context, key string) error
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	HTTP    HTTPDoer
	Aux     AuxiliaryStore
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// AuthService talks to the backend auth endpoints. It never returns transport,
// status or decoding failures as errors; they are folded into the result values.
type AuthService struct {
	baseURL string
	http    HTTPDoer
	aux     AuxiliaryStore
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthService builds the service.
func NewAuthService(cfg config.APIConfig, deps AuthDependencies) *AuthService {
	doer := deps.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout()}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		baseURL: cfg.BaseURL,
		http:    doer,
		aux:     deps.Aux,
		logger:  logger.Named("auth_service"),
		metrics: deps.Metrics,
	}
}

// Login posts credentials to the backend.
func (s *AuthService) Login(ctx context.Context, creds domain.LoginCredentials) domain.LoginResult {
	payload, err := json.Marshal(creds)
	if err != nil {
		return loginFailure(err)
	}

	resp, err := s.send(ctx, http.MethodPost, loginPath, "", bytes.NewReader(payload))
	if err != nil {
		s.metrics.RecordBackendCall("login", "error")
		s.logger.Warn("login request failed", zap.Error(err))
		return loginFailure(err)
	}
	defer resp.Body.Close()

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		s.metrics.RecordBackendCall("login", "error")
		s.logger.Warn("login response undecodable", zap.Int("status", resp.StatusCode), zap.Error(err))
		result := loginFailure(fmt.Errorf("decode login response: %w", err))
		result.Status = resp.StatusCode
		return result
	}
	if data == nil {
		data = map[string]any{}
	}

	success := isSuccess(resp.StatusCode)
	s.metrics.RecordBackendCall("login", outcome(success))
	return domain.LoginResult{
		Success: success,
		Status:  resp.StatusCode,
		Data:    data,
		Cookies: resp.Cookies(),
	}
}

// Logout ends the backend session. Failures are logged only; the auxiliary
// store entry is cleared whatever happens to the request.
func (s *AuthService) Logout(ctx context.Context, req domain.LogoutRequest) {
	defer s.clearAuxiliary(context.WithoutCancel(ctx), req.CacheKey)

	resp, err := s.send(ctx, http.MethodPost, logoutPath, req.CookieHeader, nil)
	if err != nil {
		s.metrics.RecordBackendCall("logout", "error")
		s.logger.Warn("logout request failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.metrics.RecordBackendCall("logout", outcome(isSuccess(resp.StatusCode)))
	if !isSuccess(resp.StatusCode) {
		s.logger.Warn("logout rejected", zap.Int("status", resp.StatusCode))
	}
}

// CheckAuth asks the backend whether the forwarded cookie identifies a session.
// A body carrying an "authenticated" key is returned as-is; any other body is the
// user object itself.
func (s *AuthService) CheckAuth(ctx context.Context, cookieHeader string) domain.AuthResult {
	status, body, err := s.fetchJSON(ctx, checkAuthPath, cookieHeader)
	if err != nil {
		s.metrics.RecordBackendCall("check_auth", "error")
		s.logger.Debug("check-auth failed", zap.Error(err))
		return domain.AuthResult{}
	}
	if !isSuccess(status) {
		s.metrics.RecordBackendCall("check_auth", "rejected")
		return domain.AuthResult{}
	}
	s.metrics.RecordBackendCall("check_auth", "ok")

	if raw, ok := body["authenticated"]; ok {
		authed, _ := raw.(bool)
		result := domain.AuthResult{Authenticated: authed}
		if user, ok := body["user"].(map[string]any); ok {
			result.User = domain.UserFromMap(user)
		}
		return result
	}
	return domain.AuthResult{Authenticated: true, User: domain.UserFromMap(body)}
}

// VerifySession is the edge guard's re-validation of a session cookie. It is OK
// only for a success status with a decodable body that does not explicitly deny
// authentication.
func (s *AuthService) VerifySession(ctx context.Context, cookieHeader string) domain.Verification {
	status, body, err := s.fetchJSON(ctx, checkAuthPath, cookieHeader)
	if err != nil {
		s.metrics.RecordBackendCall("verify_session", "error")
		s.logger.Warn("session verification failed", zap.Error(err))
		return domain.Verification{}
	}
	if !isSuccess(status) {
		s.metrics.RecordBackendCall("verify_session", "rejected")
		return domain.Verification{}
	}

	if raw, ok := body["authenticated"]; ok {
		if authed, _ := raw.(bool); !authed {
			s.metrics.RecordBackendCall("verify_session", "rejected")
			return domain.Verification{}
		}
		s.metrics.RecordBackendCall("verify_session", "ok")
		user, _ := body["user"].(map[string]any)
		return domain.Verification{OK: true, User: domain.UserFromMap(user)}
	}
	s.metrics.RecordBackendCall("verify_session", "ok")
	return domain.Verification{OK: true, User: domain.UserFromMap(body)}
}

// Profile loads the profile shown in the dashboard header.
func (s *AuthService) Profile(ctx context.Context, cookieHeader string) (domain.Profile, error) {
	status, body, err := s.fetchJSON(ctx, profilePath, cookieHeader)
	if err != nil {
		s.metrics.RecordBackendCall("profile", "error")
		return domain.Profile{}, apperrors.NewUpstreamError("profile", err)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		s.metrics.RecordBackendCall("profile", "rejected")
		return domain.Profile{}, apperrors.NewUnauthorized("session is not authenticated")
	case !isSuccess(status):
		s.metrics.RecordBackendCall("profile", "rejected")
		return domain.Profile{}, apperrors.NewUpstreamError("profile", fmt.Errorf("unexpected status %d", status))
	}
	s.metrics.RecordBackendCall("profile", "ok")

	fields := body
	if nested, ok := body["user"].(map[string]any); ok {
		fields = nested
	}
	user := domain.UserFromMap(fields)
	return domain.Profile{User: user, DisplayName: user.DisplayName()}, nil
}

// Ping reports whether the backend answers at all. Any HTTP response counts.
func (s *AuthService) Ping(ctx context.Context) error {
	resp, err := s.send(ctx, http.MethodGet, checkAuthPath, "", nil)
	if err != nil {
		s.metrics.RecordBackendCall("ping", "error")
		return err
	}
	s.metrics.RecordBackendCall("ping", "ok")
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (s *AuthService) clearAuxiliary(ctx context.Context, key string) {
	if s.aux == nil || key == "" {
		return
	}
	if err := s.aux.Delete(ctx, key); err != nil {
		s.logger.Warn("clear session cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AuthService) fetchJSON(ctx context.Context, path, cookieHeader string) (int, map[string]any, error) {
	resp, err := s.send(ctx, http.MethodGet, path, cookieHeader, nil)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil, nil
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if body == nil {
		return resp.StatusCode, nil, errors.New("empty response body")
	}
	return resp.StatusCode, body, nil
}

func (s *AuthService) send(ctx context.Context, method, path, cookieHeader string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	return s.http.Do(req)
}

func loginFailure(err error) domain.LoginResult {
	return domain.LoginResult{Data: map[string]any{"error": err.Error()}}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
