package studentRoutes

import (
	studentControllers "adconnect/controllers/student"
	"adconnect/middleware"
	studentValidators "adconnect/validators/student"

	"github.com/gofiber/fiber/v2"
)

func SetupStudentRoutes(router fiber.Router) {
	studentGroup := router.Group("/students", middleware.JWTMiddleware)

	studentGroup.Post("/", studentValidators.CreateStudent(), studentControllers.CreateStudent)
	studentGroup.Get("/", studentControllers.ListStudents)
	studentGroup.Get("/:id", studentControllers.GetStudent)
	studentGroup.Put("/:id", studentValidators.UpdateStudent(), studentControllers.UpdateStudent)
	studentGroup.Delete("/:id", studentControllers.DeleteStudent)

	// the admin console calls students "clients"
	clientGroup := router.Group("/clients", middleware.JWTMiddleware)
	clientGroup.Get("/", studentControllers.ListStudents)
	clientGroup.Get("/:id", studentControllers.GetStudent)
	clientGroup.Delete("/:id", studentControllers.DeleteStudent)
}
