package packageRoutes

import (
	packageControllers "adconnect/controllers/package"
	"adconnect/middleware"
	packageValidators "adconnect/validators/package"

	"github.com/gofiber/fiber/v2"
)

func SetupPackageRoutes(router fiber.Router) {
	packageGroup := router.Group("/packages", middleware.JWTMiddleware)

	packageGroup.Post("/", packageValidators.CreatePackage(), packageControllers.CreatePackage)
	packageGroup.Get("/", packageControllers.ListPackages)
	packageGroup.Get("/:id", packageControllers.GetPackage)
	packageGroup.Put("/:id", packageValidators.UpdatePackage(), packageControllers.UpdatePackage)
	packageGroup.Delete("/:id", packageControllers.DeletePackage)
}
