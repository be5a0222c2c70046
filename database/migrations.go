package database

import (
	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/models"

	"gorm.io/gorm"
)

// RunMigrations runs database migrations to ensure tables are up to date
func RunMigrations(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Event{},
	)

	if err != nil {
		logger.Error("Migration failed", "error", err)
		return err
	}

	return nil
}
