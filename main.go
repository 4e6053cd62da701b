package main

import (
	"gsp/audit"
	"gsp/config"
	"gsp/database"
	adminRoutes "gsp/routers/adminRoutes"
	applicationRoutes "gsp/routers/applicationRoutes"
	authRoutes "gsp/routers/authRoutes"
	verificationRoutes "gsp/routers/verificationRoutes"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded documents and generated certificates
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	applicationRoutes.SetupApplicationRoutes(app)
	verificationRoutes.SetupVerificationRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	audit.InitializeAuditScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
