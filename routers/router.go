package routers

import (
	healthController "adconnect/controllers/health"
	"adconnect/routers/authRoutes"
	"adconnect/routers/courseRoutes"
	"adconnect/routers/packageRoutes"
	"adconnect/routers/paymentRoutes"
	"adconnect/routers/reportRoutes"
	"adconnect/routers/studentRoutes"
	"adconnect/routers/subscriptionRoutes"
	"adconnect/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
)

// Setup mounts every API route under /api.
func Setup(app *fiber.App) fiber.Router {
	api := app.Group("/api")

	api.Get("/health", healthController.Health)
	api.Post("/test-server", healthController.TestServer)

	authRoutes.SetupAuthRoutes(api)
	userRoutes.SetupUserRoutes(api)
	studentRoutes.SetupStudentRoutes(api)
	packageRoutes.SetupPackageRoutes(api)
	courseRoutes.SetupCourseRoutes(api)
	paymentRoutes.SetupPaymentRoutes(api)
	subscriptionRoutes.SetupSubscriptionRoutes(api)
	reportRoutes.SetupReportRoutes(api)

	return api
}
