package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/router"
	"github.com/threadline/backend/internal/validators"
	"github.com/threadline/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
