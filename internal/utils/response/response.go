// Package response writes the JSON envelopes shared by every API endpoint:
// {"success": true, "data": ...} and
// {"success": false, "error_kind": ..., "errors": [...]}.
package response

import (
	domainerrors "purse/internal/errors"

	"github.com/gofiber/fiber/v2"
)

type Envelope struct {
	Success   bool              `json:"success"`
	Data      interface{}       `json:"data,omitempty"`
	ErrorKind domainerrors.Kind `json:"error_kind,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

func Error(c *fiber.Ctx, status int, kind domainerrors.Kind, messages ...string) error {
	if len(messages) == 0 {
		messages = []string{fiber.ErrInternalServerError.Message}
	}
	return c.Status(status).JSON(Envelope{ErrorKind: kind, Errors: messages})
}

// Failure reports an expected business outcome. Unknown recipients are 404,
// every other expected kind is 422.
func Failure(c *fiber.Ctx, kind domainerrors.Kind, messages []string) error {
	status := fiber.StatusUnprocessableEntity
	switch kind {
	case domainerrors.KindRecipientNotFound:
		status = fiber.StatusNotFound
	case domainerrors.KindUnexpected:
		status = fiber.StatusInternalServerError
	}
	return Error(c, status, kind, messages...)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, domainerrors.KindValidationFailed, message)
}

func ValidationError(c *fiber.Ctx, messages []string) error {
	return Error(c, fiber.StatusUnprocessableEntity, domainerrors.KindValidationFailed, messages...)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "", message)
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "", "insufficient permissions")
}

// ServerError hides the cause; callers log it.
func ServerError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, domainerrors.KindUnexpected, domainerrors.ErrOperationFailed.Message)
}
