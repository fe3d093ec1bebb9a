package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/auth"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

// FrontendHandler forwards allowed navigations to the page renderer.
type FrontendHandler struct {
	baseURL string
	logger  *zap.Logger
}

// NewFrontendHandler constructs handler.
func NewFrontendHandler(baseURL string, logger *zap.Logger) *FrontendHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrontendHandler{baseURL: baseURL, logger: logger.Named("frontend")}
}

// Forward proxies the request path and query unchanged.
func (h *FrontendHandler) Forward(c *fiber.Ctx) error {
	if user, ok := auth.UserFromContext(c); ok {
		h.logger.Debug("serving gated page", zap.String("path", c.Path()), zap.String("username", user.Username))
	}
	if err := proxy.Do(c, h.baseURL+c.OriginalURL()); err != nil {
		return apperrors.NewUpstreamError("frontend", err)
	}
	c.Response().Header.Del(fiber.HeaderServer)
	return nil
}
