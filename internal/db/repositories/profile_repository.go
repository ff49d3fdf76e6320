package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID returns (nil, nil) when the profile does not exist.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*gormModels.Profile, error) {
	var profile gormModels.Profile
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}
