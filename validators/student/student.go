package studentValidator

import (
	"strings"

	"adconnect/middleware"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateStudentRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email,max=50"`
	Phone    string `json:"phone" form:"phone" validate:"required,max=15"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Town     string `json:"town" form:"town" validate:"max=20"`
	Address  string `json:"address" form:"address" validate:"max=50"`
	Company  string `json:"company" form:"company" validate:"max=30"`
}

type UpdateStudentRequest struct {
	Name     *string `json:"name" form:"name" validate:"omitempty,notblank,max=50"`
	Email    *string `json:"email" form:"email" validate:"omitempty,email,max=50"`
	Phone    *string `json:"phone" form:"phone" validate:"omitempty,max=15"`
	Password *string `json:"password" form:"password" validate:"omitempty,min=6"`
	Town     *string `json:"town" form:"town" validate:"omitempty,max=20"`
	Address  *string `json:"address" form:"address" validate:"omitempty,max=50"`
	Status   *string `json:"status" form:"status" validate:"omitempty,oneof=UNVERIFIED VERIFIED"`
	Company  *string `json:"company" form:"company" validate:"omitempty,max=30"`
	// HasIcon is set when a new icon file accompanies the update.
	HasIcon bool `json:"-" form:"-"`
}

func (r UpdateStudentRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Password == nil &&
		r.Town == nil && r.Address == nil && r.Status == nil && r.Company == nil && !r.HasIcon
}

// normalizePhone stores Safaricom numbers in 2547XXXXXXXX form and leaves
// anything else as typed.
func normalizePhone(phone string) string {
	if msisdn, err := utils.NormalizeMSISDN(phone); err == nil {
		return msisdn
	}
	return phone
}

// CreateStudent validates the multipart registration form
func CreateStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateStudentRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		reqData.Email = strings.ToLower(reqData.Email)

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		reqData.Phone = normalizePhone(reqData.Phone)

		if _, err := c.FormFile("icon"); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload failed.", nil)
		}

		c.Locals("validatedStudent", reqData)
		return c.Next()
	}
}

// UpdateStudent validates a partial update, multipart or JSON
func UpdateStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := commonValidator.ParseID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Student ID!", nil)
		}

		reqData := new(UpdateStudentRequest)
		if !commonValidator.ParseBody(c, reqData) {
			return nil
		}
		if _, err := c.FormFile("icon"); err == nil {
			reqData.HasIcon = true
		}
		if reqData.Empty() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one field is required for update.", nil)
		}
		if reqData.Email != nil {
			*reqData.Email = strings.ToLower(*reqData.Email)
		}
		if reqData.Status != nil {
			*reqData.Status = strings.ToUpper(*reqData.Status)
		}

		if errors := commonValidator.ValidateStruct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		if reqData.Phone != nil {
			*reqData.Phone = normalizePhone(*reqData.Phone)
		}

		c.Locals("studentID", id)
		c.Locals("validatedStudentUpdate", reqData)
		return c.Next()
	}
}
