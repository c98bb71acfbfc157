package courseValidator

import (
	"adconnect/middleware"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateResourceRequest struct {
	Title    string             `json:"title" form:"title" validate:"required"`
	Resource string             `json:"resource" form:"resource" validate:"required"`
	Module   commonValidator.ID `json:"module" form:"module" validate:"required"`
}

type UpdateResourceRequest struct {
	Title    *string             `json:"title" form:"title" validate:"omitempty,notblank"`
	Resource *string             `json:"resource" form:"resource" validate:"omitempty,notblank"`
	Module   *commonValidator.ID `json:"module" form:"module" validate:"omitempty,gt=0"`
}

func (r UpdateResourceRequest) Empty() bool {
	return r.Title == nil && r.Resource == nil && r.Module == nil
}

// CreateResource validates resource registration
func CreateResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateResourceRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "All fields are required", errors)
		}

		c.Locals("validatedResource", reqData)
		return c.Next()
	}
}

// UpdateResource validates resource update request
func UpdateResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Resource ID!", nil)
		}

		reqData := new(UpdateResourceRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("resourceID", id)
		c.Locals("validatedResourceUpdate", reqData)
		return c.Next()
	}
}

// UploadResource checks a file accompanies the upload
func UploadResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := c.FormFile("file"); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload failed.", nil)
		}
		return c.Next()
	}
}
