package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civiceye/internal/observability"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// RegisterMiddlewares attaches the global chain: per-request deadline, error
// envelope rendering with panic recovery, then request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(deadlineMiddleware(timeout))
	}
	app.Use(errorEnvelopeMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// deadlineMiddleware bounds each request's UserContext; repositories and the
// session store all run on that context.
func deadlineMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelopeMiddleware converts every error leaving a handler into the
// shared {"error": {code, message, details}} envelope. Panics collapse to an
// INTERNAL_ERROR so a broken handler cannot take down the server.
func errorEnvelopeMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				renderDomainError(c, logger, metrics, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func renderDomainError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) {
	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed", zap.Error(domainErr))
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}
