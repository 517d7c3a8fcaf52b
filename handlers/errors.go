// handlers/errors.go
package handlers

import (
	"errors"

	"quest-portal-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validate checks request DTO tags before anything hits a service.
var validate = validator.New()

// statusFromError maps service sentinel errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrDuplicateSubmission):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders the standard error envelope.
func fail(c *fiber.Ctx, err error, msg string) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

// badRequest renders a 400 without a wrapped cause.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
