package reportValidator

import (
	"adconnect/middleware"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type DateRangeRequest struct {
	From string `json:"from" form:"from" query:"from"`
	To   string `json:"to" form:"to" query:"to"`
}

// DateRange reads from/to out of the query string or, for POST, the body.
func DateRange() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DateRangeRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
			body := new(DateRangeRequest)
			if !commonValidator.ParseBody(c, body) {
				return nil
			}
			if body.From != "" {
				reqData.From = body.From
			}
			if body.To != "" {
				reqData.To = body.To
			}
		}

		r, err := utils.ParseDateRange(reqData.From, reqData.To)
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"range": "from and to must be YYYY-MM-DD dates with from not after to",
			})
		}

		c.Locals("reportRange", r)
		return c.Next()
	}
}
