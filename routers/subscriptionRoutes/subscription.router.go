package subscriptionRoutes

import (
	subscriptionControllers "adconnect/controllers/subscription"
	"adconnect/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(router fiber.Router) {
	subscriptionGroup := router.Group("/subscriptions", middleware.JWTMiddleware)

	subscriptionGroup.Get("/", subscriptionControllers.ListSubscriptions)
	subscriptionGroup.Get("/:id", subscriptionControllers.GetSubscription)
	subscriptionGroup.Put("/:id/cancel", subscriptionControllers.CancelSubscription)
}
