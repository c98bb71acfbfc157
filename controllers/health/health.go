package healthController

import (
	"context"
	"time"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"

	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("health check failed")
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable", fiber.Map{"database": "down"})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{"database": "up"})
}

func TestServer(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Test route works!", nil)
}
