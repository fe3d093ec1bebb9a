package guard

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/events"
	"github.com/neurevia/portal-gateway/internal/observability"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

// Verifier re-validates a session cookie against the backend.
type Verifier interface {
	VerifySession(ctx context.Context, cookieHeader string) domain.Verification
}

// Options carries the guard's optional collaborators.
type Options struct {
	SecureCookies bool
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// Guard intercepts navigations before any page content is produced.
type Guard struct {
	routes     Routes
	verifier   Verifier
	secure     bool
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// New constructs the guard.
func New(routes Routes, verifier Verifier, opts Options) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		routes:     routes,
		verifier:   verifier,
		secure:     opts.SecureCookies,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		logger:     logger.Named("guard"),
	}
}

// Routes returns the guard's route table.
func (g *Guard) Routes() Routes {
	return g.routes
}

// Handle is the fiber middleware. Paths outside the matcher pass untouched.
// Guarded paths are only served under their canonical spelling, so the
// renderer never resolves a path other than the one that was classified.
func (g *Guard) Handle(c *fiber.Ctx) error {
	// Copied: decisions outlive the request through the audit queue.
	raw := utils.CopyString(c.Path())
	path, err := CanonicalPath(raw)
	if err != nil {
		c.Locals(observability.PathClassKey, string(domain.PathOther))
		g.metrics.RecordGuardDecision(string(domain.PathOther), "reject")
		return apperrors.NewValidationError(err.Error(), nil)
	}
	c.Locals(observability.PathClassKey, string(g.routes.Classify(path)))
	if !g.routes.Matches(path) {
		return c.Next()
	}
	if escapePath(path) != raw {
		g.metrics.RecordGuardDecision(string(g.routes.Classify(path)), "canonicalize")
		g.logger.Debug("canonicalizing guarded path", zap.String("raw", raw), zap.String("path", path))
		return c.Redirect(canonicalURL(path, string(c.Request().URI().QueryString())), fiber.StatusPermanentRedirect)
	}

	in := Input{
		Path:          path,
		Class:         g.routes.Classify(path),
		HasCookie:     c.Cookies(g.routes.CookieName) != "",
		RedirectParam: utils.CopyString(c.Query("redirect")),
	}
	if in.HasCookie && in.Class != domain.PathOther {
		in.Verification = g.verifier.VerifySession(c.UserContext(), string(c.Request().Header.Peek(fiber.HeaderCookie)))
	}

	action := Decide(in, g.routes)
	g.record(c, in, action)

	switch action.Kind {
	case ActionRedirectClearCookie:
		g.clearSessionCookie(c)
		return c.Redirect(action.Location, fiber.StatusSeeOther)
	case ActionRedirect:
		return c.Redirect(action.Location, fiber.StatusSeeOther)
	default:
		return c.Next()
	}
}

// clearSessionCookie expires the session cookie for the whole origin.
func (g *Guard) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.routes.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (g *Guard) record(c *fiber.Ctx, in Input, action Action) {
	g.metrics.RecordGuardDecision(string(in.Class), action.Kind.String())

	if action.Kind != ActionAllow {
		g.logger.Info("navigation redirected",
			zap.String("path", in.Path),
			zap.String("class", string(in.Class)),
			zap.Bool("cookie", in.HasCookie),
			zap.Bool("verified", in.Verification.OK),
			zap.String("action", action.Kind.String()),
			zap.String("location", action.Location))
	}

	if g.dispatcher == nil {
		return
	}
	rid, _ := c.Locals("requestid").(string)
	event := events.NewEvent(events.EventGuardDecision,
		events.ActorFromUser(in.Verification.User),
		events.RequestInfo{Path: in.Path, ClientIP: c.IP(), RequestID: rid},
		events.GuardDecisionPayload{
			PathClass:   in.Class,
			Action:      action.Kind.String(),
			Location:    action.Location,
			CookieFound: in.HasCookie,
		})
	if err := g.dispatcher.Publish(c.UserContext(), event); err != nil {
		g.logger.Warn("publish guard decision failed", zap.Error(err))
	}
}
