package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/models/entities"
	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

type FollowUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *FollowUpRepository) WithTx(tx *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: tx}
}

// ExistsForDestination is the duplicate guard: phone number is the natural key
// within a destination.
func (r *FollowUpRepository) ExistsForDestination(ctx context.Context, telephone, destinationType, destinationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.FollowUpRecord{}).
		Where("telephone = ? AND destination_type = ? AND destination_id = ?", telephone, destinationType, destinationID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing follow-up: %w", err)
	}
	return count > 0, nil
}

// Create inserts the record. A unique violation is returned unwrapped-checkable
// through IsDuplicate.
func (r *FollowUpRepository) Create(ctx context.Context, record *gormModels.FollowUpRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to insert follow-up: %w", err)
	}
	return nil
}

// GetByID returns (nil, nil) when the record does not exist.
func (r *FollowUpRepository) GetByID(ctx context.Context, id int64) (*gormModels.FollowUpRecord, error) {
	var record gormModels.FollowUpRecord
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch follow-up %d: %w", id, err)
	}
	return &record, nil
}

// GetScoped returns the record only when scope grants it; (nil, nil) otherwise.
func (r *FollowUpRepository) GetScoped(ctx context.Context, id int64, scope entities.VisibilityScope) (*gormModels.FollowUpRecord, error) {
	if scope.Empty() {
		return nil, nil
	}
	var record gormModels.FollowUpRecord
	err := withReadRetry(ctx, func() error {
		q := applyFollowUpScope(r.db.WithContext(ctx).Model(&gormModels.FollowUpRecord{}), scope)
		return q.Where("id = ?", id).First(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch follow-up %d: %w", id, err)
	}
	return &record, nil
}

// ListScoped returns the follow-ups visible under scope, newest first.
func (r *FollowUpRepository) ListScoped(ctx context.Context, scope entities.VisibilityScope, code *lifecycle.StatusCode, limit, offset int) ([]gormModels.FollowUpRecord, error) {
	records := []gormModels.FollowUpRecord{}
	if scope.Empty() {
		return records, nil
	}

	err := withReadRetry(ctx, func() error {
		q := applyFollowUpScope(r.db.WithContext(ctx).Model(&gormModels.FollowUpRecord{}), scope)
		if code != nil {
			q = q.Where("status_code = ?", int(*code))
		}
		return q.Order("created_at DESC").Limit(pageSize(limit)).Offset(offset).Find(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return records, nil
}

// ListByContactKey returns every follow-up of one person.
func (r *FollowUpRepository) ListByContactKey(ctx context.Context, key string) ([]gormModels.FollowUpRecord, error) {
	var records []gormModels.FollowUpRecord
	if err := r.db.WithContext(ctx).Where("contact_key = ?", key).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list follow-ups for contact: %w", err)
	}
	return records, nil
}

// UpdateStatusByContactKey keeps every follow-up of a person on the same code.
func (r *FollowUpRepository) UpdateStatusByContactKey(ctx context.Context, key string, code lifecycle.StatusCode, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.FollowUpRecord{}).
		Where("contact_key = ?", key).
		Updates(map[string]interface{}{
			"status_code": int(code),
			"updated_at":  now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update follow-up status: %w", err)
	}
	return nil
}

// UpdateStatusFrom moves every follow-up of a person from one code to
// another and returns how many rows matched. Zero means the records were no
// longer on from.
func (r *FollowUpRepository) UpdateStatusFrom(ctx context.Context, key string, from, to lifecycle.StatusCode, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.FollowUpRecord{}).
		Where("contact_key = ? AND status_code = ?", key, int(from)).
		Updates(map[string]interface{}{
			"status_code": int(to),
			"updated_at":  now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update follow-up status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *FollowUpRepository) UpdateComment(ctx context.Context, id int64, comment string, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.FollowUpRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"commentaire": comment,
			"updated_at":  now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update follow-up comment: %w", err)
	}
	return nil
}

func (r *FollowUpRepository) DeleteByContactKey(ctx context.Context, key string) (int64, error) {
	res := r.db.WithContext(ctx).Where("contact_key = ?", key).Delete(&gormModels.FollowUpRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete follow-ups: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteRefusedBefore purges refused follow-ups not touched since cutoff.
func (r *FollowUpRepository) DeleteRefusedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status_code = ? AND updated_at < ?", int(lifecycle.CodeRefused), cutoff).
		Delete(&gormModels.FollowUpRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge refused follow-ups: %w", res.Error)
	}
	return res.RowsAffected, nil
}
