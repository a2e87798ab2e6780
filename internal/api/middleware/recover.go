package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// Recover turns a handler panic into an INTERNAL_ERROR response rendered by
// the app's ErrorHandler. The stack trace is logged, never returned.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID(c)),
				slog.String("stack", string(debug.Stack())),
			)

			err = domain.ErrInternal.WithError(fmt.Errorf("panic: %v", r))
		}()

		return c.Next()
	}
}
