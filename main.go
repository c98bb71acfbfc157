package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"adconnect/config"
	"adconnect/database"
	"adconnect/logger"
	"adconnect/middleware"
	"adconnect/routers"
	"adconnect/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.AppName, cfg.LogLevel)

	if err := database.ConnectDb(cfg.DB); err != nil {
		logger.Log.Fatal().Err(err).Msg("database setup failed")
	}

	utils.InitMpesa(cfg.Mpesa)
	utils.InitEmail(cfg)

	scheduler, err := utils.InitializeSchedulers(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("scheduler setup failed")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    20 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Uploaded icons and resources, then the admin console
	app.Static(utils.UploadsRoute, cfg.UploadDir)
	app.Static("/", cfg.PublicDir)

	routers.Setup(app)
	app.Use(middleware.NotFound)

	go func() {
		logger.Log.Info().Str("port", cfg.Port).Msg("server is running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Error().Err(err).Msg("server forced to shutdown")
	}
	<-scheduler.Stop().Done()

	logger.Log.Info().Msg("server exited")
}
