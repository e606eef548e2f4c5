package apperr

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// RequestIDLocal is the fiber.Ctx local holding the request identifier.
const RequestIDLocal = "X-Request-ID"

// Handler returns a fiber.ErrorHandler that renders errors as ErrorResponse
// and logs the cause of every 5xx.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		httpErr := FromError(err)
		if httpErr.StatusCode >= fiber.StatusInternalServerError {
			requestID, _ := c.Locals(RequestIDLocal).(string)
			logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID),
				slog.Any("error", err),
			)
		}
		return c.Status(httpErr.StatusCode).JSON(httpErr.Response())
	}
}
