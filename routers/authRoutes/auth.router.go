package authRoutes

import (
	authControllers "adconnect/controllers/auth"
	"adconnect/middleware"
	authValidators "adconnect/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(router fiber.Router) {
	authGroup := router.Group("/auth")

	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware, authControllers.LoginHistoryList)
	authGroup.Get("/me", middleware.JWTMiddleware, authControllers.Me)
	authGroup.Put("/change/password", middleware.JWTMiddleware, authValidators.ChangePassword(), authControllers.ChangePassword)
}
