package middleware

import (
	"errors"

	"adconnect/logger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorHandler renders errors that escape a handler in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}

	return JsonResponse(c, code, false, message, nil)
}

// NotFound answers every route nothing else matched.
func NotFound(c *fiber.Ctx) error {
	return JsonResponse(c, fiber.StatusNotFound, false, "Not Found", nil)
}
