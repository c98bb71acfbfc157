package packageController

import (
	"errors"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	courseModels "adconnect/models/course"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	packageValidator "adconnect/validators/package"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func nameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	q := db.Model(&models.Package{}).Where("package_name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func CreatePackage(c *fiber.Ctx) error {
	pkg, ok := c.Locals("validatedPackage").(*models.Package)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	taken, err := nameTaken(db, pkg.PackageName, 0)
	if err != nil {
		logger.Log.Error().Err(err).Msg("checking package name")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create package!", nil)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Package Already Exists!", nil)
	}

	if err := db.Create(pkg).Error; err != nil {
		logger.Log.Error().Err(err).Str("package", pkg.PackageName).Msg("creating package")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create package!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Package created successfully.", pkg)
}

func ListPackages(c *fiber.Ctx) error {
	var packages []models.Package
	if err := database.Database.Db.Scopes(utils.Paginate(c)).Order("id").Find(&packages).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing packages")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch packages!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Packages fetched successfully.", packages)
}

func findPackage(c *fiber.Ctx, id uint) (*models.Package, error) {
	var pkg models.Package
	if err := database.Database.Db.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Package not found", nil)
		}
		logger.Log.Error().Err(err).Uint("package_id", id).Msg("fetching package")
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch package!", nil)
	}
	return &pkg, nil
}

func GetPackage(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Package ID!", nil)
	}

	pkg, err := findPackage(c, id)
	if pkg == nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Package fetched successfully.", fiber.Map{
		"package": pkg,
		"tiers":   pkg.Tiers(),
	})
}

func UpdatePackage(c *fiber.Ctx) error {
	id, _ := c.Locals("packageID").(uint)
	reqData, ok := c.Locals("validatedPackageUpdate").(*packageValidator.PackageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	pkg, err := findPackage(c, id)
	if pkg == nil {
		return err
	}

	reqData.ApplyTo(pkg)
	if errs := packageValidator.ValidateTiers(pkg); errs != nil {
		return middleware.ValidationErrorResponse(c, errs)
	}

	if reqData.PackageName != nil {
		taken, err := nameTaken(db, pkg.PackageName, pkg.ID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update package!", nil)
		}
		if taken {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Package Already Exists!", nil)
		}
	}

	if err := db.Save(pkg).Error; err != nil {
		logger.Log.Error().Err(err).Uint("package_id", pkg.ID).Msg("updating package")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update package!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Package updated successfully.", pkg)
}

func DeletePackage(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Package ID!", nil)
	}

	db := database.Database.Db

	pkg, err := findPackage(c, id)
	if pkg == nil {
		return err
	}

	var courses, payments, subscriptions int64
	refs := []struct {
		model interface{}
		query string
		count *int64
	}{
		{&courseModels.Course{}, "package = ?", &courses},
		{&models.Payment{}, "package = ?", &payments},
		{&models.Subscription{}, "package_id = ?", &subscriptions},
	}
	for _, ref := range refs {
		if err := db.Model(ref.model).Where(ref.query, pkg.ID).Count(ref.count).Error; err != nil {
			logger.Log.Error().Err(err).Uint("package_id", pkg.ID).Msg("counting package references")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete package!", nil)
		}
	}
	if courses+payments+subscriptions > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Package is in use and cannot be deleted!", fiber.Map{
			"courses":       courses,
			"payments":      payments,
			"subscriptions": subscriptions,
		})
	}

	if err := db.Unscoped().Delete(pkg).Error; err != nil {
		logger.Log.Error().Err(err).Uint("package_id", pkg.ID).Msg("deleting package")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete package!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Package deleted successfully.", pkg)
}
