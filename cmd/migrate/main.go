package main

import (
	"log"

	"driver-rewards/internal/config"
	"driver-rewards/internal/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Migrating schema")
	if err := database.Migrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	log.Println("Schema is up to date")
}
