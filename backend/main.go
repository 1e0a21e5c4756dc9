package main

import (
	"log"
	"time"

	"examportal/backend/config"
	"examportal/backend/middleware"
	"examportal/backend/models"
	"examportal/backend/recommender"
	"examportal/backend/routes"
	"examportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Chapter{},
		&models.Question{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestResult{},
		&models.QuestionAnswer{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Recommendation engine shared by all requests
	engine := recommender.New(
		recommender.NewGormStore(db),
		time.Duration(cfg.ProfileTTLMinutes)*time.Minute,
	)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, engine)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
