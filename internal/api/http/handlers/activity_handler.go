package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/api/dto"
	"github.com/neurevia/portal-gateway/internal/auth"
	"github.com/neurevia/portal-gateway/internal/domain"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

const defaultActivityLimit = 20

// ActivityReader reads the access audit trail.
type ActivityReader interface {
	ListRecent(ctx context.Context, filter domain.AccessLogFilter) ([]domain.AccessLogEntry, error)
}

// ActivityHandler shows signed-in users their own access history.
type ActivityHandler struct {
	sessions  *auth.Sessions
	reader    ActivityReader
	budget    time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityHandler constructs handler. reader is nil when no audit store is configured.
func NewActivityHandler(sessions *auth.Sessions, reader ActivityReader, budget time.Duration, logger *zap.Logger) *ActivityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &ActivityHandler{
		sessions:  sessions,
		reader:    reader,
		budget:    budget,
		validator: v,
		logger:    logger.Named("activity_handler"),
	}
}

// Recent handles GET /session/activity.
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	var query dto.ActivityQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := h.validator.Struct(&query); err != nil {
		return apperrors.FromValidation(err)
	}

	user, err := h.authenticate(c)
	if err != nil {
		return err
	}
	if h.reader == nil {
		return apperrors.NewDomainError("AUDIT_UNAVAILABLE", "access history is not recorded", http.StatusServiceUnavailable, nil)
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultActivityLimit
	}
	entries, err := h.reader.ListRecent(c.UserContext(), domain.AccessLogFilter{
		Kind:     domain.AccessKind(query.Kind),
		Username: user.Username,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list access history failed", zap.String("username", user.Username), zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	resp := dto.ActivityResponse{Username: user.Username, Entries: make([]dto.ActivityEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.ActivityEntry{
			Kind:     string(e.Kind),
			Path:     e.Path,
			Action:   e.Action,
			Location: e.Location,
			ClientIP: e.ClientIP,
			At:       e.CreatedAt,
		})
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(resp)
}

// authenticate resolves the caller through a fresh check-auth. Doctors still
// awaiting approval are refused like they are on the dashboard.
func (h *ActivityHandler) authenticate(c *fiber.Ctx) (*domain.UserSummary, error) {
	hook := h.sessions.Hook(c)
	defer hook.Close()
	hook.Mount()

	ctx, cancel := context.WithTimeout(c.UserContext(), h.budget)
	defer cancel()
	state, err := hook.Wait(ctx)
	if err != nil {
		return nil, err
	}

	user := state.User
	if state.Status != auth.StatusAuthenticated || user == nil || user.Username == "" {
		return nil, apperrors.NewUnauthorized("session is not authenticated")
	}
	if user.IsPendingApproval() {
		return nil, apperrors.NewForbidden("account is awaiting approval")
	}
	return user, nil
}
