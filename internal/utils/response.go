package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
)

// SendJSON writes the payload as-is with the given status code.
func SendJSON(c *fiber.Ctx, status int, payload interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(payload)
}

// SendError sends an error JSON response with the given status code. Details are
// omitted from the body when empty.
func SendError(c *fiber.Ctx, status int, message string, details string) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   message,
		Details: details,
	})
}
