package paymentValidator

import (
	"strings"

	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type STKPushRequest struct {
	Client  commonValidator.ID `json:"client" form:"client" validate:"required"`
	Course  commonValidator.ID `json:"course" form:"course" validate:"required"`
	Package commonValidator.ID `json:"package" form:"package"`
	Plan    string             `json:"plan" form:"plan" validate:"required,plan"`
	Phone   string             `json:"phone" form:"phone" validate:"omitempty,msisdn"`
}

// STKPush validates a payment initiation
func STKPush() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(STKPushRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		reqData.Plan = strings.ToLower(reqData.Plan)

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if reqData.Phone != "" {
			reqData.Phone, _ = utils.NormalizeMSISDN(reqData.Phone)
		}

		c.Locals("validatedSTKPush", reqData)
		return c.Next()
	}
}

// ListPayments validates the optional list filters
func ListPayments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := strings.TrimSpace(c.Query("status"))
		if status != "" {
			switch strings.ToLower(status) {
			case "pending":
				status = models.PaymentPending
			case "completed":
				status = models.PaymentCompleted
			case "failed":
				status = models.PaymentFailed
			case "cancelled":
				status = models.PaymentCancelled
			default:
				return middleware.ValidationErrorResponse(c, map[string]string{
					"status": "status must be one of Pending, Completed, Failed or Cancelled",
				})
			}
		}
		c.Locals("paymentStatus", status)
		return c.Next()
	}
}
