package userRoutes

import (
	userControllers "adconnect/controllers/userControllers"
	"adconnect/middleware"
	"adconnect/models"
	userValidators "adconnect/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes registers admin account management, open to ADMIN only.
func SetupUserRoutes(router fiber.Router) {
	userGroup := router.Group("/users", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	userGroup.Get("/", userControllers.ListUsers)
	userGroup.Get("/:id", userControllers.GetUser)
	userGroup.Post("/", userValidators.CreateUser(), userControllers.CreateUser)
	userGroup.Put("/:id", userValidators.UpdateUser(), userControllers.UpdateUser)
	userGroup.Delete("/:id", userControllers.DeleteUser)
}
