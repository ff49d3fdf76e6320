package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// Record stores a reconciliation row unless an unresolved one already exists
// for the same key and source table. It reports whether a row was inserted.
func (r *ReconciliationRepository) Record(ctx context.Context, rec *gormModels.TransferReconciliation) (bool, error) {
	var existing int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.TransferReconciliation{}).
		Where("contact_key = ? AND source_table = ? AND resolved = ?", rec.ContactKey, rec.SourceTable, false).
		Count(&existing).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reconciliation: %w", err)
	}
	if existing > 0 {
		return false, nil
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return false, fmt.Errorf("failed to record reconciliation: %w", err)
	}
	return true, nil
}

func (r *ReconciliationRepository) GetByID(ctx context.Context, id int64) (*gormModels.TransferReconciliation, error) {
	var rec gormModels.TransferReconciliation
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reconciliation %d: %w", id, err)
	}
	return &rec, nil
}

func (r *ReconciliationRepository) ListUnresolved(ctx context.Context, churchID, branchID int64) ([]gormModels.TransferReconciliation, error) {
	rows := []gormModels.TransferReconciliation{}
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("church_id = ? AND branch_id = ? AND resolved = ?", churchID, branchID, false).
			Order("created_at").
			Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	return rows, nil
}

func (r *ReconciliationRepository) Resolve(ctx context.Context, id int64, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.TransferReconciliation{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to resolve reconciliation %d: %w", id, err)
	}
	return nil
}
