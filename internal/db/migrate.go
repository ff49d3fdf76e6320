package db

import (
	"fmt"

	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns, including the
// unique index on suivis(telephone, destination_type, destination_id).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(gormModels.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
