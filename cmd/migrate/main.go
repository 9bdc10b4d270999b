package main

import (
	"kodbank/internal/config" // Custom import path (Config)
	"kodbank/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	gormDB, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gormDB); err != nil {
		logrus.Fatalf("%v", err)
	}
}
