package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"goldengate/internal/domain"
	applog "goldengate/internal/log"
)

// FriendlyError is what users see for any unexpected failure.
const FriendlyError = "Algo salió mal. Por favor, inténtalo de nuevo."

// render writes a screen view model, adding the signed-in user when present.
func render(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if s, ok := c.Locals("user").(domain.Session); ok {
		data["user"] = s
	}
	return c.JSON(data)
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler logs unexpected errors and answers without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return fail(c, fe.Code, fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return fail(c, fiber.StatusInternalServerError, FriendlyError)
}
