package authController

import (
	"errors"
	"time"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/models"
	"adconnect/utils"
	authValidator "adconnect/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error().Err(err).Msg("login lookup failed")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		logger.Log.Warn().Uint("user_id", user.ID).Str("ip", c.IP()).Msg("wrong password")
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if user.Status != models.UserActive {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is inactive!", nil)
	}

	// Update last login time
	now := time.Now()
	user.LastLogin = &now
	if err := db.Model(&user).Update("last_login", &now).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("saving last login time")
	}

	history := models.LoginHistory{
		UserID:    user.ID,
		IPAddress: c.IP(),
		Device:    truncate(c.Get(fiber.HeaderUserAgent), 255),
		Timestamp: now,
	}
	if err := db.Create(&history).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("recording login history")
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		logger.Log.Error().Err(err).Msg("signing token")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	logger.Log.Info().Uint("user_id", user.ID).Str("ip", c.IP()).Msg("admin logged in")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Me returns the admin behind the token.
func Me(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid user session!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func ChangePassword(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid user session!", nil)
	}

	reqData, ok := c.Locals("validatedChangePassword").(*authValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashedPassword, err := utils.HashPassword(reqData.NewPassword)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to hash password!", nil)
	}

	if err := database.Database.Db.Model(&user).Update("password", hashedPassword).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", user.ID).Msg("updating password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

// LoginHistoryList returns the caller's own sign-ins, newest first.
func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid user session!", nil)
	}

	var history []models.LoginHistory
	if err := database.Database.Db.Where("user_id = ?", userId).
		Scopes(utils.Paginate(c)).
		Order("id desc").
		Find(&history).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", userId).Msg("listing login history")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	var total int64
	if err := database.Database.Db.Model(&models.LoginHistory{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		logger.Log.Error().Err(err).Uint("user_id", userId).Msg("counting login history")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"history": history,
		"total":   total,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
