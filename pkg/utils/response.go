package utils

import "github.com/gofiber/fiber/v2"

// FieldError is one itemized request-validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error writes the shared error envelope {code, message}.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"code":    status,
		"message": message,
	})
}

// ValidationError writes the error envelope with itemized field errors.
func ValidationError(c *fiber.Ctx, errors []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    fiber.StatusBadRequest,
		"message": "Validation error",
		"errors":  errors,
	})
}

func JSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}
