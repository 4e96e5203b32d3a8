package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// ErrorHandler renders every failure as {"success":false,"error":{code,message}}.
// AppErrors keep their status; fiber errors keep theirs; anything else is a 500
// whose details only reach the log.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					slog.String("request_id", requestID(c)),
					slog.String("code", appErr.Code),
					slog.String("path", c.Path()),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
				)
			}
			return writeError(c, appErr.StatusCode, appErr.Code, appErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return writeError(c, fiberErr.Code, "HTTP_ERROR", fiberErr.Message)
		}

		logger.Error("unhandled error",
			slog.String("request_id", requestID(c)),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return writeError(c, fiber.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message)
	}
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	body := fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	}
	if id := requestID(c); id != "" {
		body["request_id"] = id
	}
	return c.Status(status).JSON(body)
}
