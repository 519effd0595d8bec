package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/router"
	"github.com/nayonf/inkline/backend/pkg/config"
	"github.com/nayonf/inkline/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Firebase Cloud Messaging is optional: without credentials, offline users
	// simply see their notifications on the next poll.
	var messenger *firebase.Messenger
	if cfg.FirebaseCredentialsPath != "" {
		messenger, err = firebase.InitMessenger(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("Firebase messaging disabled: %v", err)
			messenger = nil
		}
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, messenger, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
