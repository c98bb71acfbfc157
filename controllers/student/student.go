package studentController

import (
	"errors"
	"strings"

	"adconnect/config"
	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	studentValidator "adconnect/validators/student"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func withImageURL(c *fiber.Ctx, s *models.Student) {
	s.ImageURL = utils.GetFileURL(c.BaseURL(), s.Icon)
}

// duplicateStudent reports whether another student already uses email or
// phone. Empty values are skipped.
func duplicateStudent(db *gorm.DB, email, phone string, exceptID uint) (bool, error) {
	q := db.Model(&models.Student{})
	switch {
	case email != "" && phone != "":
		q = q.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("email = ?", email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		return false, nil
	}
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateStudent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStudent").(*studentValidator.CreateStudentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	exists, err := duplicateStudent(db, reqData.Email, reqData.Phone, 0)
	if err != nil {
		logger.Log.Error().Err(err).Msg("checking student uniqueness")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create student!", nil)
	}
	if exists {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User Already Exists!", nil)
	}

	file, err := c.FormFile("icon")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload failed.", nil)
	}
	stored, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		logger.Log.Error().Err(err).Msg("saving student icon")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "File upload failed.", nil)
	}

	hash, err := utils.HashPassword(reqData.Password)
	if err != nil {
		_ = utils.DeleteUploadedFile(config.AppConfig.UploadDir, stored)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	student := models.Student{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Phone:    reqData.Phone,
		Status:   models.StudentUnverified,
		Password: hash,
		Town:     reqData.Town,
		Address:  reqData.Address,
		Company:  reqData.Company,
		Icon:     stored,
	}
	if err := db.Create(&student).Error; err != nil {
		logger.Log.Error().Err(err).Str("email", student.Email).Msg("creating student")
		if rmErr := utils.DeleteUploadedFile(config.AppConfig.UploadDir, stored); rmErr != nil {
			logger.Log.Error().Err(rmErr).Str("file", stored).Msg("removing orphaned icon")
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create student!", nil)
	}

	withImageURL(c, &student)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student created successfully.", student)
}

func ListStudents(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&models.Student{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		db = db.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		db = db.Where("status = ?", status)
	}

	var students []models.Student
	if err := db.Scopes(utils.Paginate(c)).Order("id desc").Find(&students).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing students")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch students!", nil)
	}
	for i := range students {
		withImageURL(c, &students[i])
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully.", students)
}

func findStudent(c *fiber.Ctx, id uint) (*models.Student, error) {
	var student models.Student
	if err := database.Database.Db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found", nil)
		}
		logger.Log.Error().Err(err).Uint("student_id", id).Msg("fetching student")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch student!", nil)
	}
	return &student, nil
}

func GetStudent(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Student ID!", nil)
	}

	student, err := findStudent(c, id)
	if student == nil {
		return err
	}
	withImageURL(c, student)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student fetched successfully.", student)
}

func UpdateStudent(c *fiber.Ctx) error {
	id, _ := c.Locals("studentID").(uint)
	reqData, ok := c.Locals("validatedStudentUpdate").(*studentValidator.UpdateStudentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	uploadDir := config.AppConfig.UploadDir

	student, err := findStudent(c, id)
	if student == nil {
		return err
	}

	var email, phone string
	if reqData.Email != nil && *reqData.Email != student.Email {
		email = *reqData.Email
	}
	if reqData.Phone != nil && *reqData.Phone != student.Phone {
		phone = *reqData.Phone
	}
	exists, err := duplicateStudent(db, email, phone, student.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("checking student uniqueness")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update student!", nil)
	}
	if exists {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User Already Exists!", nil)
	}

	if reqData.Name != nil {
		student.Name = *reqData.Name
	}
	if reqData.Email != nil {
		student.Email = *reqData.Email
	}
	if reqData.Phone != nil {
		student.Phone = *reqData.Phone
	}
	if reqData.Town != nil {
		student.Town = *reqData.Town
	}
	if reqData.Address != nil {
		student.Address = *reqData.Address
	}
	if reqData.Status != nil {
		student.Status = *reqData.Status
	}
	if reqData.Company != nil {
		student.Company = *reqData.Company
	}
	if reqData.Password != nil {
		hash, err := utils.HashPassword(*reqData.Password)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		student.Password = hash
	}

	oldIcon := student.Icon
	var newIcon string
	if reqData.HasIcon {
		file, err := c.FormFile("icon")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload failed.", nil)
		}
		newIcon, err = utils.SaveUploadedFile(file, uploadDir)
		if err != nil {
			logger.Log.Error().Err(err).Msg("saving student icon")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "File upload failed.", nil)
		}
		student.Icon = newIcon
	}

	if err := db.Save(student).Error; err != nil {
		logger.Log.Error().Err(err).Uint("student_id", student.ID).Msg("updating student")
		if newIcon != "" {
			_ = utils.DeleteUploadedFile(uploadDir, newIcon)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update student!", nil)
	}

	if newIcon != "" && oldIcon != "" {
		if err := utils.DeleteUploadedFile(uploadDir, oldIcon); err != nil {
			logger.Log.Error().Err(err).Str("file", oldIcon).Msg("removing replaced icon")
		}
	}

	withImageURL(c, student)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student updated successfully.", student)
}

func DeleteStudent(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Student ID!", nil)
	}

	db := database.Database.Db

	student, err := findStudent(c, id)
	if student == nil {
		return err
	}

	var payments int64
	if err := db.Model(&models.Payment{}).Where("client = ?", student.ID).Count(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete student!", nil)
	}
	if payments > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Student has payments and cannot be deleted!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", student.ID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(student).Error
	})
	if err != nil {
		logger.Log.Error().Err(err).Uint("student_id", student.ID).Msg("deleting student")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete student!", nil)
	}

	if err := utils.DeleteUploadedFile(config.AppConfig.UploadDir, student.Icon); err != nil {
		logger.Log.Error().Err(err).Str("file", student.Icon).Msg("removing student icon")
	}

	withImageURL(c, student)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student deleted successfully.", student)
}
