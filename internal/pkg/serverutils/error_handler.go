package serverutils

import (
	"errors"

	"pdf-rag-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps a sentinel (matched with errors.Is) to an HTTP status.
type ErrorStatus struct {
	Err    error
	Status int
}

// ErrorHandler renders any error returned by a handler as the standard
// envelope. Mappings are checked in order; the first match wins.
func ErrorHandler(log logger.ILogger, mappings ...ErrorStatus) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		} else {
			for _, m := range mappings {
				if errors.Is(err, m.Err) {
					code = m.Status
					break
				}
			}
		}

		if code >= fiber.StatusInternalServerError && log != nil {
			log.Error("http", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
