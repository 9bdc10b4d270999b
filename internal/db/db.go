package db

import (
	"fmt"  // Error wrapping
	"time" // Pool lifetimes

	"kodbank/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM logger levels
)

// Open connects to MySQL and sizes the connection pool
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)                  // Cap concurrent connections
	sqlDB.SetMaxIdleConns(5)                   // Keep a few warm connections
	sqlDB.SetConnMaxLifetime(30 * time.Minute) // Recycle before server-side timeouts
	return db, nil
}

// Config is the gorm configuration shared by the server, the migrator and tests
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true, // Map driver unique violations to gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates the accounts and session_tokens tables. It is
// idempotent.
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.Account{}, &domain.SessionToken{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	// MySQL compares strings case-insensitively by default
	if db.Dialector.Name() == "mysql" {
		for _, column := range []string{"username", "email"} {
			stmt := fmt.Sprintf("ALTER TABLE accounts MODIFY %s VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL", column)
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("set %s collation: %w", column, err)
			}
		}
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
