package controllers

import (
	"errors"
	"strconv"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	courseModels "adconnect/models/course"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	courseValidator "adconnect/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedModule").(*courseValidator.CreateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	found, err := exists(db, &courseModels.Course{}, uint(reqData.Course))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
	}

	module := courseModels.Module{
		Title:    reqData.Title,
		About:    reqData.About,
		Video:    reqData.Video,
		Resource: reqData.Resource,
		CourseID: uint(reqData.Course),
	}
	if err := db.Create(&module).Error; err != nil {
		logger.Log.Error().Err(err).Uint("course_id", module.CourseID).Msg("creating module")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully.", module)
}

func ListModules(c *fiber.Ctx) error {
	db := database.Database.Db.Model(&courseModels.Module{})
	if raw := c.Query("course"); raw != "" {
		courseID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		db = db.Where("course = ?", courseID)
	}

	var modules []courseModels.Module
	if err := db.Scopes(utils.Paginate(c)).Order("id").Find(&modules).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing modules")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully.", modules)
}

func findModule(c *fiber.Ctx, id uint) (*courseModels.Module, error) {
	var module courseModels.Module
	if err := database.Database.Db.First(&module, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found", nil)
		}
		logger.Log.Error().Err(err).Uint("module_id", id).Msg("fetching module")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch module!", nil)
	}
	return &module, nil
}

func GetModule(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}

	module, err := findModule(c, id)
	if module == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully.", module)
}

func UpdateModule(c *fiber.Ctx) error {
	id, _ := c.Locals("moduleID").(uint)
	reqData, ok := c.Locals("validatedModuleUpdate").(*courseValidator.UpdateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	module, err := findModule(c, id)
	if module == nil {
		return err
	}

	if reqData.Course != nil {
		found, err := exists(db, &courseModels.Course{}, uint(*reqData.Course))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
		}
		if !found {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found", nil)
		}
		module.CourseID = uint(*reqData.Course)
	}
	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.About != nil {
		module.About = *reqData.About
	}
	if reqData.Video != nil {
		module.Video = *reqData.Video
	}
	if reqData.Resource != nil {
		module.Resource = *reqData.Resource
	}

	if err := db.Save(module).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", module.ID).Msg("updating module")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully.", module)
}

func DeleteModule(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}

	db := database.Database.Db

	module, err := findModule(c, id)
	if module == nil {
		return err
	}

	var resources int64
	if err := db.Model(&courseModels.Resource{}).Where("module = ?", module.ID).Count(&resources).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", module.ID).Msg("counting module resources")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}
	if resources > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Module has resources and cannot be deleted!", fiber.Map{
			"resources": resources,
		})
	}

	if err := db.Unscoped().Delete(module).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", module.ID).Msg("deleting module")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully.", module)
}
