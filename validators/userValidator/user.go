package userValidator

import (
	"strings"

	"adconnect/middleware"
	"adconnect/models"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email,max=100"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Role     string `json:"role" form:"role" validate:"omitempty,oneof=ADMIN EDITOR"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" form:"name" validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email" form:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" form:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" form:"role" validate:"omitempty,oneof=ADMIN EDITOR"`
	Status   *string `json:"status" form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (r UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil && r.Role == nil && r.Status == nil
}

// CreateUser validates a new admin account
func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateUserRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		reqData.Email = strings.ToLower(reqData.Email)
		reqData.Role = strings.ToUpper(reqData.Role)
		if reqData.Role == "" {
			reqData.Role = models.RoleAdmin
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// UpdateUser validates a partial admin update
func UpdateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		reqData := new(UpdateUserRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if reqData.Email != nil {
			*reqData.Email = strings.ToLower(*reqData.Email)
		}
		if reqData.Role != nil {
			*reqData.Role = strings.ToUpper(*reqData.Role)
		}
		if reqData.Status != nil {
			*reqData.Status = strings.ToUpper(*reqData.Status)
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("userID", id)
		c.Locals("validatedUserUpdate", reqData)
		return c.Next()
	}
}
