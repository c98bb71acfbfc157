package courseRoutes

import (
	controllers "adconnect/controllers/course"
	"adconnect/middleware"
	validators "adconnect/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers courses, their modules and module resources
func SetupCourseRoutes(router fiber.Router) {
	courseGroup := router.Group("/courses", middleware.JWTMiddleware)
	courseGroup.Post("/", validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/", controllers.ListCourses)
	courseGroup.Get("/:id", controllers.GetCourse)
	courseGroup.Put("/:id", validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", controllers.DeleteCourse)

	moduleGroup := router.Group("/modules", middleware.JWTMiddleware)
	moduleGroup.Post("/", validators.CreateModule(), controllers.CreateModule)
	moduleGroup.Get("/", controllers.ListModules)
	moduleGroup.Get("/:id", controllers.GetModule)
	moduleGroup.Put("/:id", validators.UpdateModule(), controllers.UpdateModule)
	moduleGroup.Delete("/:id", controllers.DeleteModule)

	resourceGroup := router.Group("/resources", middleware.JWTMiddleware)
	resourceGroup.Post("/upload", validators.UploadResource(), controllers.UploadResource)
	resourceGroup.Post("/", validators.CreateResource(), controllers.CreateResource)
	// the console registers resources with PUT
	resourceGroup.Put("/", validators.CreateResource(), controllers.CreateResource)
	resourceGroup.Get("/", controllers.ListResources)
	resourceGroup.Get("/check-module/:moduleId", controllers.CheckModule)
	resourceGroup.Get("/:moduleId", controllers.ListModuleResources)
	resourceGroup.Put("/:id", validators.UpdateResource(), controllers.UpdateResource)
	resourceGroup.Delete("/:id", controllers.DeleteResource)
}
