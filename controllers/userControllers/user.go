package userController

import (
	"errors"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	commonValidator "adconnect/validators/common"
	userValidator "adconnect/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.Database.Db.Scopes(utils.Paginate(c)).Order("id").Find(&users).Error; err != nil {
		logger.Log.Error().Err(err).Msg("listing users")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", users)
}

func GetUser(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", user)
}

func CreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*userValidator.CreateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", reqData.Email).Count(&count).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User Already Exists!", nil)
	}

	hash, err := utils.HashPassword(reqData.Password)
	if err != nil {
		logger.Log.Error().Err(err).Msg("hashing password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Role:     reqData.Role,
		Status:   models.UserActive,
		Password: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Log.Error().Err(err).Str("email", user.Email).Msg("creating user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", user)
}

func UpdateUser(c *fiber.Ctx) error {
	id, _ := c.Locals("userID").(uint)
	reqData, ok := c.Locals("validatedUserUpdate").(*userValidator.UpdateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}

	if reqData.Email != nil && *reqData.Email != user.Email {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", *reqData.Email, user.ID).Count(&count).Error; err != nil {
			logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("checking email uniqueness")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
		}
		if count > 0 {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User Already Exists!", nil)
		}
		user.Email = *reqData.Email
	}
	if reqData.Name != nil {
		user.Name = *reqData.Name
	}
	if reqData.Role != nil {
		user.Role = *reqData.Role
	}
	if reqData.Status != nil {
		user.Status = *reqData.Status
	}
	if reqData.Password != nil {
		hash, err := utils.HashPassword(*reqData.Password)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		user.Password = hash
	}

	if err := db.Save(&user).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("updating user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", user)
}

func DeleteUser(c *fiber.Ctx) error {
	id, ok := commonValidator.ParseID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
	}

	if self, _ := c.Locals("userId").(uint); self == id {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You cannot delete your own account!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user!", nil)
	}

	if err := db.Unscoped().Delete(&user).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("deleting user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully.", user)
}
