package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/neurevia/portal-gateway/internal/api/http/handlers"
	"github.com/neurevia/portal-gateway/internal/auth"
	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/guard"
	"github.com/neurevia/portal-gateway/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Session  *handlers.SessionHandler
	Activity *handlers.ActivityHandler
	Frontend *handlers.FrontendHandler
	Guard    *guard.Guard
	Sessions *auth.Sessions
	WithAuth auth.WithAuthConfig
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Gateway endpoints come first; every other
// navigation passes the edge guard and, for protected pages, the WithAuth gate
// before it is forwarded to the frontend.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Handler())

	session := app.Group("/session")
	session.Post("/login", cfg.Session.Login)
	session.Post("/logout", cfg.Session.Logout)
	session.Get("/state", cfg.Session.State)
	session.Get("/profile", cfg.Session.Profile)
	session.Get("/activity", cfg.Activity.Recent)

	app.Use(cfg.Guard.Handle)

	routes := cfg.Guard.Routes()
	gated := auth.WithAuth(cfg.Sessions.Hook, cfg.WithAuth)(cfg.Frontend.Forward)
	app.All("/*", func(c *fiber.Ctx) error {
		if routes.Classify(c.Path()) == domain.PathProtected {
			return gated(c)
		}
		return cfg.Frontend.Forward(c)
	})
}
