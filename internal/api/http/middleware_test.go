package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/civiceye/internal/observability"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

func newTestApp() (*fiber.App, *observability.Metrics) {
	app := fiber.New()
	metrics := observability.NewMetrics()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	return app, metrics
}

func decodeErrorEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	envelope, ok := payload["error"].(map[string]any)
	require.True(t, ok, "missing error envelope in %s", body)
	return envelope
}

func TestErrorMiddlewareRendersDomainError(t *testing.T) {
	app, _ := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("complaint", map[string]any{"id": 9})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	envelope := decodeErrorEnvelope(t, resp)
	assert.Equal(t, "NOT_FOUND", envelope["code"])
	assert.Equal(t, "complaint not found", envelope["message"])
}

func TestErrorMiddlewareMasksUnknownErrors(t *testing.T) {
	app, _ := newTestApp()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	envelope := decodeErrorEnvelope(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", envelope["code"])
	assert.Equal(t, "internal server error", envelope["message"])
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	app, _ := newTestApp()
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	envelope := decodeErrorEnvelope(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", envelope["code"])
}

func TestErrorMiddlewareRecordsErrorMetrics(t *testing.T) {
	app, metrics := newTestApp()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("nope")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	resp.Body.Close()

	_, errCounts := metrics.Snapshot()
	assert.Equal(t, int64(1), errCounts["/fail|GET|FORBIDDEN"])
}
