package controllers

import (
	"errors"

	"adconnect/config"
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

func withResourceURL(c *fiber.Ctx, r courseModels.Resource) fiber.Map {
	return fiber.Map{
		"id":         r.ID,
		"title":      r.Title,
		"resource":   r.Resource,
		"url":        utils.GetFileURL(c.BaseURL(), r.Resource),
		"module":     r.ModuleID,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	}
}

func uploadBases(c *fiber.Ctx) []string {
	return []string{c.BaseURL(), config.AppConfig.AppURL}
}

// fileShared reports whether a resource other than exceptID still points at
// the same stored upload.
func fileShared(db *gorm.DB, exceptID uint, stored string) (bool, error) {
	q := db.Model(&courseModels.Resource{}).Where("id <> ?", exceptID)
	if name := utils.UploadName(stored); name != "" {
		q = q.Where("(resource = ? OR resource LIKE ?)", stored, "%/"+name)
	} else {
		q = q.Where("resource = ?", stored)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func withResourceURLs(c *fiber.Ctx, resources []courseModels.Resource) []fiber.Map {
	out := make([]fiber.Map, 0, len(resources))
	for _, r := range resources {
		out = append(out, withResourceURL(c, r))
	}
	return out
}

// UploadResource stores a document and hands back its URL for a later
// CreateResource call.
func UploadResource(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File upload failed.", nil)
	}

	stored, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		logger.Log.Error().Err(err).Str("file", file.Filename).Msg("saving resource upload")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "File upload failed.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully.", fiber.Map{
		"resource": utils.GetFileURL(c.BaseURL(), stored),
		"path":     stored,
	})
}

func CreateResource(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResource").(*courseValidator.CreateResourceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	found, err := exists(db, &courseModels.Module{}, uint(reqData.Module))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create resource!", nil)
	}
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found", nil)
	}

	resource := courseModels.Resource{
		Title:    reqData.Title,
		Resource: reqData.Resource,
		ModuleID: uint(reqData.Module),
	}
	if err := db.Create(&resource).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", resource.ModuleID).Msg("creating resource")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create resource!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Resource created successfully.", withResourceURL(c, resource))
}

func ListResources(c *fiber.Ctx) error {
	var resources []courseModels.Resource
	if err := database.Database.Db.Scopes(utils.Paginate(c)).Order("id").Find(&resources).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing resources")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch resources!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resources fetched successfully.", withResourceURLs(c, resources))
}

func ListModuleResources(c *fiber.Ctx) error {
	moduleID, ok := commonValidator.ParseID(c, "moduleId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}

	var resources []courseModels.Resource
	if err := database.Database.Db.Where("module = ?", moduleID).Order("id").Find(&resources).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", moduleID).Msg("listing module resources")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch resources!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resources fetched successfully.", withResourceURLs(c, resources))
}

// CheckModule tells the console whether a module already has resources.
func CheckModule(c *fiber.Ctx) error {
	moduleID, ok := commonValidator.ParseID(c, "moduleId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}

	var count int64
	if err := database.Database.Db.Model(&courseModels.Resource{}).Where("module = ?", moduleID).Count(&count).Error; err != nil {
		logger.Log.Error().Err(err).Uint("module_id", moduleID).Msg("checking module resources")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check module!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module checked.", fiber.Map{"isReferenced": count > 0})
}

func findResource(c *fiber.Ctx, id uint) (*courseModels.Resource, error) {
	var resource courseModels.Resource
	if err := database.Database.Db.First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Resource not found", nil)
		}
		logger.Log.Error().Err(err).Uint("resource_id", id).Msg("fetching resource")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch resource!", nil)
	}
	return &resource, nil
}

func UpdateResource(c *fiber.Ctx) error {
	id, _ := c.Locals("resourceID").(uint)
	reqData, ok := c.Locals("validatedResourceUpdate").(*courseValidator.UpdateResourceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	resource, err := findResource(c, id)
	if resource == nil {
		return err
	}

	if reqData.Module != nil {
		found, err := exists(db, &courseModels.Module{}, uint(*reqData.Module))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update resource!", nil)
		}
		if !found {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found", nil)
		}
		resource.ModuleID = uint(*reqData.Module)
	}
	if reqData.Title != nil {
		resource.Title = *reqData.Title
	}

	oldFile := ""
	if reqData.Resource != nil && *reqData.Resource != resource.Resource {
		oldFile = resource.Resource
		resource.Resource = *reqData.Resource
	}

	if err := db.Save(resource).Error; err != nil {
		logger.Log.Error().Err(err).Uint("resource_id", resource.ID).Msg("updating resource")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update resource!", nil)
	}

	fileStatus := "unchanged"
	switch {
	case oldFile == "":
	case !utils.IsLocalUpload(oldFile, uploadBases(c)...):
		fileStatus = "replaced"
	default:
		fileStatus = removeResourceFile(c, db, resource.ID, oldFile)
	}

	data := withResourceURL(c, *resource)
	data["fileStatus"] = fileStatus
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource updated successfully.", data)
}

func DeleteResource(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Resource ID!", nil)
	}

	resource, err := findResource(c, id)
	if resource == nil {
		return err
	}

	db := database.Database.Db
	if err := db.Unscoped().Delete(resource).Error; err != nil {
		logger.Log.Error().Err(err).Uint("resource_id", resource.ID).Msg("deleting resource")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete resource!", nil)
	}

	if utils.IsLocalUpload(resource.Resource, uploadBases(c)...) {
		removeResourceFile(c, db, resource.ID, resource.Resource)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource deleted successfully.", resource)
}

// removeResourceFile deletes a local upload no other resource points at and
// returns the resulting fileStatus.
func removeResourceFile(c *fiber.Ctx, db *gorm.DB, resourceID uint, stored string) string {
	shared, err := fileShared(db, resourceID, stored)
	if err != nil {
		logger.Log.Error().Err(err).Str("file", stored).Msg("checking resource file references")
		return "old file not deleted"
	}
	if shared {
		logger.Log.Info().Str("file", stored).Msg("resource file still referenced, kept")
		return "old file not deleted"
	}
	if err := utils.DeleteUploadedFile(config.AppConfig.UploadDir, stored, uploadBases(c)...); err != nil {
		logger.Log.Warn().Err(err).Str("file", stored).Msg("removing resource file")
		return "old file not deleted"
	}
	return "old file deleted"
}
