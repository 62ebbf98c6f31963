package database

import (
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/you/authstarter/internal/infrastructure/repositories"
)

// Open creates a new database connection. TranslateError turns driver
// unique-violation errors into gorm.ErrDuplicatedKey, which the user
// repository relies on for the registration race.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "auth.",
		},
	}

	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate performs database migration for all required tables,
// including the Casbin policy table for role enforcement.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&repositories.DBUser{},
		&repositories.DBSession{},
		&repositories.DBVerificationToken{},
		&repositories.DBPasswordResetToken{},
		&repositories.DBLoginAttempt{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}

	return nil
}
