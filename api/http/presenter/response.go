package presenter

import "github.com/gofiber/fiber/v2"

// ErrorResponse — единый конверт ошибки для фронта.
type ErrorResponse struct {
	Message string `json:"message"`
}

// JSON отдаёт произвольное тело с заданным статусом.
func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Error отдаёт сообщение об ошибке в стандартном конверте.
func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}
