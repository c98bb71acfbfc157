package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"adconnect/config"
	"adconnect/database"
	"adconnect/logger"
	"adconnect/models"
	"adconnect/utils"

	"gorm.io/gorm"
)

// Creates (or resets the password of) an admin account:
//
//	go run ./scripts -email admin@adconnect.co.ke -password secret123 -name Admin
func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password, at least 8 characters")
	name := flag.String("name", "Admin", "display name")
	role := flag.String("role", models.RoleAdmin, "ADMIN or EDITOR")
	flag.Parse()

	*email = strings.ToLower(strings.TrimSpace(*email))
	*role = strings.ToUpper(strings.TrimSpace(*role))
	if *email == "" || len(*password) < 8 {
		flag.Usage()
		log.Fatal("email and a password of at least 8 characters are required")
	}
	if *role != models.RoleAdmin && *role != models.RoleEditor {
		log.Fatalf("unknown role %q", *role)
	}

	// Load config and connect to database
	config.LoadConfig()
	logger.Init("adconnect-scripts", config.AppConfig.LogLevel)
	if err := database.ConnectDb(config.AppConfig.DB); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.Database.Db

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = db.Where("email = ?", *email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     *name,
			Email:    *email,
			Role:     *role,
			Status:   models.UserActive,
			Password: hash,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		log.Printf("Created %s %s (id %d)", user.Role, user.Email, user.ID)
	case err != nil:
		log.Fatalf("Failed to look up admin: %v", err)
	default:
		if err := db.Model(&user).Updates(map[string]interface{}{
			"password": hash,
			"role":     *role,
			"status":   models.UserActive,
		}).Error; err != nil {
			log.Fatalf("Failed to update admin: %v", err)
		}
		log.Printf("Reset password of %s (id %d)", user.Email, user.ID)
	}
}
