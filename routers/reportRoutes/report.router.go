package reportRoutes

import (
	reportControllers "adconnect/controllers/report"
	"adconnect/middleware"
	reportValidators "adconnect/validators/report"

	"github.com/gofiber/fiber/v2"
)

func SetupReportRoutes(router fiber.Router) {
	router.Get("/download/excel", middleware.JWTMiddleware, reportValidators.DateRange(), reportControllers.DownloadExcel)
	router.Post("/download/excel", middleware.JWTMiddleware, reportValidators.DateRange(), reportControllers.DownloadExcel)

	router.Get("/reports/summary", middleware.JWTMiddleware, reportControllers.Summary)
}
