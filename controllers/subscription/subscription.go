package subscriptionController

import (
	"errors"
	"strconv"
	"strings"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListSubscriptions(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&models.Subscription{}).Preload("Package")

	if raw := c.Query("client"); raw != "" {
		clientID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid client ID!", nil)
		}
		db = db.Where("user_id = ?", clientID)
	}
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		switch status {
		case models.SubscriptionActive, models.SubscriptionExpired, models.SubscriptionCancelled:
			db = db.Where("status = ?", status)
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "status must be one of ACTIVE, EXPIRED or CANCELLED",
			})
		}
	}

	var subscriptions []models.Subscription
	if err := db.Scopes(utils.Paginate(c)).Order("id desc").Find(&subscriptions).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing subscriptions")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscriptions!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscriptions fetched successfully.", subscriptions)
}

func findSubscription(c *fiber.Ctx) (*models.Subscription, error) {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Subscription ID!", nil)
	}

	var sub models.Subscription
	if err := database.Database.Db.Preload("Package").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Subscription not found", nil)
		}
		logger.Log.Error().Err(err).Uint("subscription_id", id).Msg("fetching subscription")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscription!", nil)
	}
	return &sub, nil
}

func GetSubscription(c *fiber.Ctx) error {
	sub, err := findSubscription(c)
	if sub == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription fetched successfully.", sub)
}

// CancelSubscription ends an active subscription early.
func CancelSubscription(c *fiber.Ctx) error {
	sub, err := findSubscription(c)
	if sub == nil {
		return err
	}

	result := database.Database.Db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
		Update("status", models.SubscriptionCancelled)
	if result.Error != nil {
		logger.Log.Error().Err(result.Error).Uint("subscription_id", sub.ID).Msg("cancelling subscription")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel subscription!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only active subscriptions can be cancelled!", sub)
	}

	sub.Status = models.SubscriptionCancelled
	logger.Log.Info().Uint("subscription_id", sub.ID).Uint("user_id", sub.UserID).Msg("subscription cancelled")
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription cancelled successfully.", sub)
}
