package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/observability"
	apperrors "github.com/neurevia/portal-gateway/pkg/util"
)

func errorBody(t *testing.T, app *fiber.App, path string) (int, map[string]any, http.Header) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body["error"].(map[string]any), resp.Header
}

func TestMiddlewares_RenderDomainErrors(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{Logger: zap.NewNop(), Metrics: metrics})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewValidationError("invalid payload", map[string]any{"username": "required"})
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	status, body, header := errorBody(t, app, "/invalid")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Equal(t, map[string]any{"username": "required"}, body["details"])
	assert.NotEmpty(t, header.Get(fiber.HeaderXRequestID))

	status, body, _ = errorBody(t, app, "/panic")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])

	series, err := testutil.GatherAndCount(metrics.Registry(), "portal_gateway_http_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}
