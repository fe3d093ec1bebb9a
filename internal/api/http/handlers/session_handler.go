package handlers

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/api/dto"
	"github.com/neurevia/portal-gateway/internal/auth"
	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/events"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

// ProfileSource loads the dashboard header profile.
type ProfileSource interface {
	Profile(ctx context.Context, cookieHeader string) (domain.Profile, error)
}

// SessionHandler exposes the portal's session endpoints.
type SessionHandler struct {
	sessions   *auth.Sessions
	profiles   ProfileSource
	dispatcher events.Dispatcher
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *auth.Sessions, profiles ProfileSource, dispatcher events.Dispatcher, logger *zap.Logger) *SessionHandler {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		sessions:   sessions,
		profiles:   profiles,
		dispatcher: dispatcher,
		validator:  v,
		logger:     logger.Named("session_handler"),
	}
}

// Login handles POST /session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return apperrors.FromValidation(err)
	}

	hook := h.sessions.Hook(c)
	defer hook.Close()

	result := hook.Login(c.UserContext(), req.Credentials())
	for _, cookie := range result.Cookies {
		c.Cookie(relayCookie(cookie))
	}

	actor := events.Actor{Username: req.Username}
	if user := hook.State().User; user != nil {
		actor = events.ActorFromUser(user)
	}
	h.publish(c, events.EventSessionLogin, actor, events.SessionLoginPayload{Success: result.Success, Status: result.Status})

	if !result.Success {
		return c.Status(loginFailureStatus(result.Status)).JSON(dto.LoginResponse{Success: false, Data: result.Data})
	}

	if key := hook.CacheKey(); key != "" {
		if err := h.sessions.SetHandle(c, key, actor.Username); err != nil {
			h.logger.Warn("issue session handle failed", zap.Error(err))
		}
	}
	return c.JSON(dto.LoginResponse{Success: true, Data: result.Data})
}

// Logout handles POST /session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	hook := h.sessions.Hook(c)
	defer hook.Close()

	// Resolved before logout deletes the hydration entry.
	actor := events.Actor{Username: h.sessions.HandleUser(c)}
	if user, ok := hook.Hydrated(c.UserContext()); ok {
		actor = events.ActorFromUser(user)
	}

	hook.Logout(c.UserContext())
	h.sessions.ClearCookies(c)
	h.publish(c, events.EventSessionLogout, actor, nil)

	location, ok := auth.NavigationFrom(c)
	if !ok {
		location = h.sessions.AuthPath()
	}
	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return c.JSON(dto.LogoutResponse{Redirect: location})
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}

// State handles GET /session/state. With wait=false the current snapshot is
// returned without waiting for check-auth, carrying the cached login-time user
// for early display when one exists.
func (h *SessionHandler) State(c *fiber.Ctx) error {
	hook := h.sessions.Hook(c)
	defer hook.Close()

	hook.Mount()
	state := hook.State()
	if c.QueryBool("wait", true) {
		state, _ = hook.Wait(c.UserContext())
	}

	resp := dto.StateResponse{
		IsAuthenticated: state.IsAuthenticated(),
		User:            state.User,
		Loading:         state.Loading(),
	}
	if state.Loading() {
		if user, ok := hook.Hydrated(c.UserContext()); ok {
			resp.HydratedUser = user
		}
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(resp)
}

// Profile handles GET /session/profile.
func (h *SessionHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.profiles.Profile(c.UserContext(), string(c.Request().Header.Peek(fiber.HeaderCookie)))
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileResponse{DisplayName: profile.DisplayName, Profile: profile.User})
}

func (h *SessionHandler) publish(c *fiber.Ctx, t events.EventType, actor events.Actor, payload interface{}) {
	if h.dispatcher == nil {
		return
	}
	rid, _ := c.Locals("requestid").(string)
	event := events.NewEvent(t, actor, events.RequestInfo{Path: utils.CopyString(c.Path()), ClientIP: c.IP(), RequestID: rid}, payload)
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		h.logger.Warn("publish session event failed", zap.String("type", string(t)), zap.Error(err))
	}
}

// loginFailureStatus maps a failed backend login onto the gateway answer. Only
// a 4xx from the backend means the credentials were refused.
func loginFailureStatus(backendStatus int) int {
	if backendStatus == 0 || backendStatus >= http.StatusInternalServerError {
		return http.StatusBadGateway
	}
	return http.StatusUnauthorized
}

// relayCookie copies a backend Set-Cookie onto the gateway response. The Domain
// attribute is dropped so the cookie binds to the portal origin.
func relayCookie(src *http.Cookie) *fiber.Cookie {
	out := &fiber.Cookie{
		Name:     src.Name,
		Value:    src.Value,
		Path:     src.Path,
		MaxAge:   src.MaxAge,
		Expires:  src.Expires,
		Secure:   src.Secure,
		HTTPOnly: src.HttpOnly,
	}
	switch src.SameSite {
	case http.SameSiteStrictMode:
		out.SameSite = fiber.CookieSameSiteStrictMode
	case http.SameSiteNoneMode:
		out.SameSite = fiber.CookieSameSiteNoneMode
	default:
		out.SameSite = fiber.CookieSameSiteLaxMode
	}
	if out.Path == "" {
		out.Path = "/"
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
