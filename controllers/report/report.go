package reportController

import (
	"time"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	courseModels "adconnect/models/course"
	"adconnect/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DownloadExcel streams the students, payments and subscriptions workbook.
func DownloadExcel(c *fiber.Ctx) error {
	r, _ := c.Locals("reportRange").(utils.DateRange)

	f, err := utils.BuildReport(database.Database.Db, r)
	if err != nil {
		logger.Log.Error().Err(err).Msg("building report")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate report!", nil)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Log.Error().Err(err).Msg("writing report")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate report!", nil)
	}

	filename := "adconnect-report-" + time.Now().Format("20060102") + ".xlsx"
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// Summary returns the dashboard counters.
func Summary(c *fiber.Ctx) error {
	db := database.Database.Db

	var students, courses, modules, resources, completedPayments, activeSubscriptions int64
	counts := []*gorm.DB{
		db.Model(&models.Student{}).Count(&students),
		db.Model(&courseModels.Course{}).Count(&courses),
		db.Model(&courseModels.Module{}).Count(&modules),
		db.Model(&courseModels.Resource{}).Count(&resources),
		db.Model(&models.Payment{}).Where("status = ?", models.PaymentCompleted).Count(&completedPayments),
		db.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionActive).Count(&activeSubscriptions),
	}
	for _, q := range counts {
		if q.Error != nil {
			logger.Log.Error().Err(q.Error).Msg("counting summary")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch summary!", nil)
		}
	}

	var revenue, revenueToday float64
	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentCompleted).
		Select("COALESCE(SUM(amount_paid),0)").
		Scan(&revenue).Error; err != nil {
		logger.Log.Error().Err(err).Msg("summing revenue")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch summary!", nil)
	}
	if err := db.Model(&models.Payment{}).
		Where("status = ? AND date >= ? AND date <= ?", models.PaymentCompleted, now.BeginningOfDay(), now.EndOfDay()).
		Select("COALESCE(SUM(amount_paid),0)").
		Scan(&revenueToday).Error; err != nil {
		logger.Log.Error().Err(err).Msg("summing today's revenue")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch summary!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Summary fetched successfully.", fiber.Map{
		"students":             students,
		"courses":              courses,
		"modules":              modules,
		"resources":            resources,
		"completed_payments":   completedPayments,
		"active_subscriptions": activeSubscriptions,
		"revenue":              revenue,
		"revenue_today":        revenueToday,
	})
}
