package database

import (
	"context"
	"fmt"
	"time"

	"adconnect/config"
	"adconnect/logger"
	"adconnect/models"
	courseModels "adconnect/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates the schema and stores the
// connection in Database.
func ConnectDb(cfg config.DBConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}

	if err := runMigrations(db); err != nil {
		return err
	}

	Database = DbInstance{Db: db}
	return nil
}

// Open connects with the driver named in cfg and sets up connection pooling.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Log.Info().Str("driver", cfg.Driver).Str("database", cfg.Name).Msg("connected to database")
	return db, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate runs the schema migrations on db.
func Migrate(db *gorm.DB) error {
	return runMigrations(db)
}

// runMigrations performs database migrations. Parents come before children so
// foreign keys resolve on MySQL and Postgres.
func runMigrations(db *gorm.DB) error {
	logger.Log.Info().Msg("running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Package{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Resource{},
		&models.Student{},
		&models.Payment{},
		&models.Subscription{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Log.Info().Msg("migrations completed successfully")
	return nil
}

// Ping checks the connection is alive.
func Ping(ctx context.Context) error {
	if Database.Db == nil {
		return fmt.Errorf("database not initialised")
	}
	sqlDB, err := Database.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
