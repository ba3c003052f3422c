package database

import (
	"fmt"

	"gorm.io/gorm"

	"campus-chat-service/internal/domain"
)

// AutoMigrate creates or updates the tables for every domain model.
// Groups come first so user and content foreign keys can reference them.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.Group{},
		&domain.User{},
		&domain.Message{},
		&domain.Status{},
		&domain.File{},
		&domain.Course{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}
