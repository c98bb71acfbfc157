package paymentRoutes

import (
	paymentControllers "adconnect/controllers/payment"
	"adconnect/middleware"
	paymentValidators "adconnect/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(router fiber.Router) {
	paymentGroup := router.Group("/payments")

	// called by the storefront and by Safaricom, no token
	paymentGroup.Post("/stk-push", paymentValidators.STKPush(), paymentControllers.STKPush)
	paymentGroup.Post("/callback", paymentControllers.Callback)

	paymentGroup.Get("/", middleware.JWTMiddleware, paymentValidators.ListPayments(), paymentControllers.ListPayments)
	paymentGroup.Get("/:id", middleware.JWTMiddleware, paymentControllers.GetPayment)
	paymentGroup.Post("/:id/query", middleware.JWTMiddleware, paymentControllers.QueryPayment)
}
