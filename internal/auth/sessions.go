package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const navigateKey = "auth_navigate"

// SessionsConfig names the cookies and paths the portal session layer uses.
type SessionsConfig struct {
	AuthCookie   string
	HandleCookie string
	AuthPath     string
	CacheTTL     time.Duration
	Secure       bool
}

// Sessions builds hooks for incoming requests and manages the hydration handle
// cookie that travels alongside the backend's auth cookie.
type Sessions struct {
	client Client
	cache  HydrationCache
	tokens *TokenManager
	cfg    SessionsConfig
	logger *zap.Logger
}

// NewSessions constructs the session layer. cache may be nil.
func NewSessions(client Client, cache HydrationCache, tokens *TokenManager, cfg SessionsConfig, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{client: client, cache: cache, tokens: tokens, cfg: cfg, logger: logger}
}

// Hook mounts a fresh hook bound to the request. Navigations requested by the hook
// are recorded on the context and read back with NavigationFrom.
func (s *Sessions) Hook(c *fiber.Ctx) *Hook {
	return NewHook(c.UserContext(), HookDependencies{
		Client:       s.client,
		Cache:        s.cache,
		CacheTTL:     s.cfg.CacheTTL,
		CookieHeader: string(c.Request().Header.Peek(fiber.HeaderCookie)),
		CacheKey:     s.cacheKey(c),
		AuthPath:     s.cfg.AuthPath,
		Navigate:     func(path string) { c.Locals(navigateKey, path) },
		Logger:       s.logger,
	})
}

// SetHandle signs cacheKey into the session-only handle cookie.
func (s *Sessions) SetHandle(c *fiber.Ctx, cacheKey, username string) error {
	signed, _, err := s.tokens.Issue(cacheKey, username)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:        s.cfg.HandleCookie,
		Value:       signed,
		Path:        "/",
		HTTPOnly:    true,
		Secure:      s.cfg.Secure,
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: true,
	})
	return nil
}

// ClearCookies expires the handle cookie and the backend auth cookie.
func (s *Sessions) ClearCookies(c *fiber.Ctx) {
	for _, name := range []string{s.cfg.HandleCookie, s.cfg.AuthCookie} {
		if name == "" {
			continue
		}
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			HTTPOnly: true,
			Secure:   s.cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

// AuthPath is where logged-out browsers are sent.
func (s *Sessions) AuthPath() string {
	return s.cfg.AuthPath
}

// HandleUser returns the username signed into the handle cookie at login.
func (s *Sessions) HandleUser(c *fiber.Ctx) string {
	if claims := s.handle(c); claims != nil {
		return claims.Username
	}
	return ""
}

func (s *Sessions) cacheKey(c *fiber.Ctx) string {
	if claims := s.handle(c); claims != nil {
		return claims.CacheKey
	}
	return ""
}

func (s *Sessions) handle(c *fiber.Ctx) *HandleClaims {
	raw := c.Cookies(s.cfg.HandleCookie)
	if raw == "" || s.tokens == nil {
		return nil
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		s.logger.Debug("ignoring invalid session handle", zap.Error(err))
		return nil
	}
	return claims
}

// NavigationFrom returns the path a hook asked to navigate to during this request.
func NavigationFrom(c *fiber.Ctx) (string, bool) {
	path, ok := c.Locals(navigateKey).(string)
	return path, ok && path != ""
}
