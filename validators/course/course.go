package courseValidator

import (
	"adconnect/middleware"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title       string             `json:"title" form:"title" validate:"required,max=191"`
	Description string             `json:"description" form:"description" validate:"required"`
	Preview     string             `json:"preview" form:"preview" validate:"required"`
	Package     commonValidator.ID `json:"package" form:"package" validate:"required"`
}

type UpdateCourseRequest struct {
	Title       *string             `json:"title" form:"title" validate:"omitempty,notblank,max=191"`
	Description *string             `json:"description" form:"description" validate:"omitempty,notblank"`
	Preview     *string             `json:"preview" form:"preview" validate:"omitempty,notblank"`
	Package     *commonValidator.ID `json:"package" form:"package" validate:"omitempty,gt=0"`
}

func (r UpdateCourseRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Preview == nil && r.Package == nil
}

// CreateCourse validates course creation request
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "All fields are required", errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates course update request
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(UpdateCourseRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", id)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}
