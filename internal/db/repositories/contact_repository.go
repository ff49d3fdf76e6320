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

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ContactRepository) WithTx(tx *gorm.DB) *ContactRepository {
	return &ContactRepository{db: tx}
}

func (r *ContactRepository) Create(ctx context.Context, contact *gormModels.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// GetByID returns (nil, nil) when the contact does not exist.
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*gormModels.Contact, error) {
	var contact gormModels.Contact
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch contact %d: %w", id, err)
	}
	return &contact, nil
}

// GetByContactKey returns (nil, nil) when no row has the key.
func (r *ContactRepository) GetByContactKey(ctx context.Context, key string) (*gormModels.Contact, error) {
	var contact gormModels.Contact
	err := r.db.WithContext(ctx).Where("contact_key = ?", key).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch contact by key: %w", err)
	}
	return &contact, nil
}

// GetScoped returns the contact only when scope grants it; (nil, nil)
// otherwise.
func (r *ContactRepository) GetScoped(ctx context.Context, id int64, scope entities.VisibilityScope) (*gormModels.Contact, error) {
	if scope.Empty() {
		return nil, nil
	}
	var contact gormModels.Contact
	err := withReadRetry(ctx, func() error {
		q := applyContactScope(r.db.WithContext(ctx).Model(&gormModels.Contact{}), scope)
		return q.Where("id = ?", id).First(&contact).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch contact %d: %w", id, err)
	}
	return &contact, nil
}

// ListScoped returns the contacts visible under scope, newest first.
func (r *ContactRepository) ListScoped(ctx context.Context, scope entities.VisibilityScope, status *lifecycle.Status, limit, offset int) ([]gormModels.Contact, error) {
	contacts := []gormModels.Contact{}
	if scope.Empty() {
		return contacts, nil
	}

	err := withReadRetry(ctx, func() error {
		q := applyContactScope(r.db.WithContext(ctx).Model(&gormModels.Contact{}), scope)
		if status != nil {
			q = q.Where("status = ?", *status)
		}
		return q.Order("created_at DESC").Limit(pageSize(limit)).Offset(offset).Find(&contacts).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// UpdateStatus sets the lifecycle status and bumps updated_at, which is also
// the retention clock for refused contacts.
func (r *ContactRepository) UpdateStatus(ctx context.Context, key string, status lifecycle.Status, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Contact{}).
		Where("contact_key = ?", key).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	return nil
}

// UpdateStatusFrom is UpdateStatus guarded on the current status. It returns
// how many rows matched.
func (r *ContactRepository) UpdateStatusFrom(ctx context.Context, key string, from, to lifecycle.Status, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Contact{}).
		Where("contact_key = ? AND status = ?", key, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update contact status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ContactRepository) UpdateEvangelismStatus(ctx context.Context, id int64, status lifecycle.EvangelismStatus, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"evangelism_status": string(status),
			"updated_at":        now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update evangelism status: %w", err)
	}
	return nil
}

// DeleteByContactKey removes the source row of a hand-off.
func (r *ContactRepository) DeleteByContactKey(ctx context.Context, key string) (int64, error) {
	res := r.db.WithContext(ctx).Where("contact_key = ?", key).Delete(&gormModels.Contact{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteRefusedBefore purges refused contacts not touched since cutoff.
func (r *ContactRepository) DeleteRefusedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", lifecycle.StatusRefused, cutoff).
		Delete(&gormModels.Contact{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge refused contacts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
