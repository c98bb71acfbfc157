package controllers

import (
	"errors"
	"strconv"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	courseModels "adconnect/models/course"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	courseValidator "adconnect/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// exists reports whether a row with id exists in model's table.
func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	err := db.Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func titleTaken(db *gorm.DB, title string, exceptID uint) (bool, error) {
	q := db.Model(&courseModels.Course{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	found, err := exists(db, &models.Package{}, uint(reqData.Package))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Package not found", nil)
	}

	taken, err := titleTaken(db, reqData.Title, 0)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course Already Exists!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		Preview:     reqData.Preview,
		PackageID:   uint(reqData.Package),
	}
	if err := db.Create(&course).Error; err != nil {
		logger.Log.Error().Err(err).Str("title", course.Title).Msg("creating course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

func ListCourses(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&courseModels.Course{})
	if raw := c.Query("package"); raw != "" {
		packageID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Package ID!", nil)
		}
		db = db.Where("package = ?", packageID)
	}

	var courses []courseModels.Course
	if err := db.Scopes(utils.Paginate(c)).Order("id").Find(&courses).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing courses")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

func findCourse(c *fiber.Ctx, id uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := database.Database.Db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
		}
		logger.Log.Error().Err(err).Uint("course_id", id).Msg("fetching course")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	return &course, nil
}

func GetCourse(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
	}

	course, err := findCourse(c, id)
	if course == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}

func UpdateCourse(c *fiber.Ctx) error {
	id, _ := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	course, err := findCourse(c, id)
	if course == nil {
		return err
	}

	if reqData.Package != nil {
		found, err := exists(db, &models.Package{}, uint(*reqData.Package))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
		if !found {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Package not found", nil)
		}
		course.PackageID = uint(*reqData.Package)
	}
	if reqData.Title != nil {
		taken, err := titleTaken(db, *reqData.Title, course.ID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
		if taken {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course Already Exists!", nil)
		}
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.Preview != nil {
		course.Preview = *reqData.Preview
	}

	if err := db.Save(course).Error; err != nil {
		logger.Log.Error().Err(err).Uint("course_id", course.ID).Msg("updating course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

func DeleteCourse(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
	}

	db := database.Database.Db

	course, err := findCourse(c, id)
	if course == nil {
		return err
	}

	var modules, payments int64
	if err := db.Model(&courseModels.Module{}).Where("course = ?", course.ID).Count(&modules).Error; err != nil {
		logger.Log.Error().Err(err).Uint("course_id", course.ID).Msg("counting course modules")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	if err := db.Model(&models.Payment{}).Where("course = ?", course.ID).Count(&payments).Error; err != nil {
		logger.Log.Error().Err(err).Uint("course_id", course.ID).Msg("counting course payments")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	if modules+payments > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course is in use and cannot be deleted!", fiber.Map{
			"modules":  modules,
			"payments": payments,
		})
	}

	if err := db.Unscoped().Delete(course).Error; err != nil {
		logger.Log.Error().Err(err).Uint("course_id", course.ID).Msg("deleting course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", course)
}
