package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/neurevia/portal-gateway/internal/config"
	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/guard"
)

const userKey = "auth_user"

// HookFactory mounts a hook for the request being served.
type HookFactory func(c *fiber.Ctx) *Hook

// WithAuthConfig tunes the gate.
type WithAuthConfig struct {
	// Budget is how long the gate waits for the hook to resolve before serving the
	// loading placeholder. Values under config.MinHydrationBudget are raised to it.
	Budget         time.Duration
	AuthPath       string
	RefreshSeconds int
}

// WithAuth wraps next so it only runs for an authenticated hook state. Loading and
// unauthenticated states get a placeholder page instead, and next is not called.
func WithAuth(factory HookFactory, cfg WithAuthConfig) func(next fiber.Handler) fiber.Handler {
	if cfg.AuthPath == "" {
		cfg.AuthPath = "/auth"
	}
	if cfg.RefreshSeconds <= 0 {
		cfg.RefreshSeconds = 1
	}
	if cfg.Budget < config.MinHydrationBudget {
		cfg.Budget = config.MinHydrationBudget
	}

	return func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			hook := factory(c)
			defer hook.Close()
			hook.Mount()

			ctx, cancel := context.WithTimeout(c.UserContext(), cfg.Budget)
			state, _ := hook.Wait(ctx)
			cancel()

			switch Gate(state) {
			case VerdictRender:
				c.Locals(userKey, state.User)
				return next(c)
			case VerdictRedirect:
				path, err := guard.CanonicalPath(c.Path())
				if err != nil {
					path = cfg.AuthPath
				}
				return renderPage(c, "redirect.html", redirectPage{
					Location: guard.LoginLocation(cfg.AuthPath, path),
				})
			default:
				return renderPage(c, "loading.html", loadingPage{RefreshSeconds: cfg.RefreshSeconds})
			}
		}
	}
}

// UserFromContext retrieves the user WithAuth resolved for this request.
func UserFromContext(c *fiber.Ctx) (*domain.UserSummary, bool) {
	user, ok := c.Locals(userKey).(*domain.UserSummary)
	return user, ok && user != nil
}
