package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

type CellGroupRepository struct {
	db *gorm.DB
}

func NewCellGroupRepository(db *gorm.DB) *CellGroupRepository {
	return &CellGroupRepository{db: db}
}

// GetByID returns (nil, nil) when the cellule does not exist in the church/branch.
func (r *CellGroupRepository) GetByID(ctx context.Context, id, churchID, branchID int64) (*gormModels.CellGroup, error) {
	var cell gormModels.CellGroup
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("id = ? AND church_id = ? AND branch_id = ?", id, churchID, branchID).
			First(&cell).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch cellule %d: %w", id, err)
	}
	return &cell, nil
}

// IDsByResponsable lists the cellules a profile leads.
func (r *CellGroupRepository) IDsByResponsable(ctx context.Context, profileID string) ([]int64, error) {
	var ids []int64
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&gormModels.CellGroup{}).
			Where("responsable_id = ?", profileID).
			Order("id").
			Pluck("id", &ids).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cellules for responsable: %w", err)
	}
	return ids, nil
}
