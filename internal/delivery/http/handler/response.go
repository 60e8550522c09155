package handler

import (
	"github.com/gofiber/fiber/v2"

	"teams-meeting-bridge/internal/domain/apperror"
	"teams-meeting-bridge/internal/domain/entity"
)

// statusFor maps an application error onto the HTTP status the API exposes.
// Only invalid input is a client error; unauthenticated stays a 500.
func statusFor(err error) int {
	if apperror.Is(err, apperror.KindInvalidInput) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(entity.NewErrorResponse(message))
}
