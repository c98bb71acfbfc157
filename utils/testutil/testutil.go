// Package testutil wires the package-level database, config and logger for
// tests and provides fixtures and a fake Daraja server.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"adconnect/config"
	"adconnect/database"
	"adconnect/logger"
	"adconnect/models"
	courseModels "adconnect/models/course"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Config returns a configuration suitable for tests. Uploads go to a
// per-test temporary directory.
func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                  "3000",
		AppURL:                "http://localhost:3000",
		AppName:               "AdConnect",
		LogLevel:              "error",
		PublicDir:             t.TempDir(),
		UploadDir:             t.TempDir(),
		CORSOrigins:           []string{"http://localhost:63342"},
		DB:                    config.DBConfig{Driver: "sqlite"},
		JWTKey:                "test-secret",
		JWTTTL:                time.Hour,
		SaltRound:             bcrypt.MinCost,
		Mpesa:                 mpesaConfig(),
		PaymentPendingTimeout: 15 * time.Minute,
		SubscriptionCron:      "0 9 * * *",
		PaymentSweepCron:      "*/5 * * * *",
		EmailSender:           "no-reply@example.com",
	}
}

func mpesaConfig() config.MpesaConfig {
	return config.MpesaConfig{
		Environment:     "sandbox",
		BaseURL:         "http://127.0.0.1:0",
		ConsumerKey:     "key",
		ConsumerSecret:  "secret",
		ShortCode:       "174379",
		PassKey:         "passkey",
		CallbackURL:     "http://localhost:3000/api/payments/callback",
		TransactionType: "CustomerPayBillOnline",
		Timeout:         5 * time.Second,
	}
}

// Setup opens a private in-memory SQLite database, migrates it and installs it
// together with a test config and a silent logger. Globals are restored on
// cleanup.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	prevDB, prevCfg, prevLog := database.Database, config.AppConfig, logger.Log
	logger.Log = logger.Nop()

	cfg := Config(t)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.DB.Name = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	// one connection keeps the shared in-memory database free of lock errors
	cfg.DB.MaxOpenConns = 1

	db, err := database.Open(cfg.DB)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.Database = database.DbInstance{Db: db}
	config.AppConfig = cfg

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		database.Database, config.AppConfig, logger.Log = prevDB, prevCfg, prevLog
	})
	return db
}

// CreateUser inserts an admin with a bcrypt-hashed password.
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: "Admin " + email, Email: email, Password: string(hash), Role: role, Status: models.UserActive}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// CreatePackage inserts a package with a basic (1 Month / 500) and a gold
// (1 Year / 5000) tier.
func CreatePackage(t *testing.T, db *gorm.DB, name string) models.Package {
	t.Helper()
	p := models.Package{
		PackageName: name,
		NPeriod:     "1 Month",
		NAmount:     500,
		GPeriod:     "1 Year",
		GAmount:     5000,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func CreateStudent(t *testing.T, db *gorm.DB, name, email, phone string) models.Student {
	t.Helper()
	s := models.Student{Name: name, Email: email, Phone: phone, Status: models.StudentUnverified, Icon: "uploads/icon.png"}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func CreateCourse(t *testing.T, db *gorm.DB, title string, packageID uint) courseModels.Course {
	t.Helper()
	c := courseModels.Course{Title: title, Description: "About " + title, Preview: "https://youtu.be/preview", PackageID: packageID}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func CreateModule(t *testing.T, db *gorm.DB, title string, courseID uint) courseModels.Module {
	t.Helper()
	m := courseModels.Module{Title: title, About: "About " + title, Video: "https://youtu.be/module", Resource: courseModels.ResourceFlagTrue, CourseID: courseID}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func CreateResource(t *testing.T, db *gorm.DB, title, stored string, moduleID uint) courseModels.Resource {
	t.Helper()
	r := courseModels.Resource{Title: title, Resource: stored, ModuleID: moduleID}
	require.NoError(t, db.Create(&r).Error)
	return r
}

// CreatePendingPayment inserts a Pending payment awaiting checkoutID.
func CreatePendingPayment(t *testing.T, db *gorm.DB, student models.Student, course courseModels.Course, plan string, amount float64, checkoutID string) models.Payment {
	t.Helper()
	p := models.Payment{
		ClientID:          student.ID,
		CourseID:          course.ID,
		PackageID:         course.PackageID,
		Plan:              plan,
		Amount:            amount,
		Phone:             student.Phone,
		Status:            models.PaymentPending,
		CheckoutRequestID: &checkoutID,
		MerchantRequestID: "merchant-" + checkoutID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
