package authValidator

import (
	"strings"

	"adconnect/middleware"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		reqData.Email = strings.ToLower(reqData.Email)

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required,min=8"`
	CnfPassword     string `json:"cnfPassword" form:"cnfPassword" validate:"required,eqfield=NewPassword"`
}

// ChangePassword validator middleware
func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangePasswordRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedChangePassword", reqData)
		return c.Next()
	}
}
