package courseValidator

import (
	"strings"

	"adconnect/middleware"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateModuleRequest struct {
	Title    string             `json:"title" form:"title" validate:"required"`
	About    string             `json:"about" form:"about" validate:"required"`
	Video    string             `json:"video" form:"video" validate:"required"`
	Resource string             `json:"resource" form:"resource" validate:"required,oneof=TRUE FALSE"`
	Course   commonValidator.ID `json:"course" form:"course" validate:"required"`
}

type UpdateModuleRequest struct {
	Title    *string             `json:"title" form:"title" validate:"omitempty,notblank"`
	About    *string             `json:"about" form:"about" validate:"omitempty,notblank"`
	Video    *string             `json:"video" form:"video" validate:"omitempty,notblank"`
	Resource *string             `json:"resource" form:"resource" validate:"omitempty,oneof=TRUE FALSE"`
	Course   *commonValidator.ID `json:"course" form:"course" validate:"omitempty,gt=0"`
}

func (r UpdateModuleRequest) Empty() bool {
	return r.Title == nil && r.About == nil && r.Video == nil && r.Resource == nil && r.Course == nil
}

// CreateModule validates module creation request
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateModuleRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		reqData.Resource = strings.ToUpper(reqData.Resource)

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "All fields are required", errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModule validates module update request
func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}

		reqData := new(UpdateModuleRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if reqData.Resource != nil {
			*reqData.Resource = strings.ToUpper(*reqData.Resource)
		}
		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("moduleID", id)
		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}
