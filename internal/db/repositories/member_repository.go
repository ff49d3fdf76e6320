package repositories

import (
	"context"
	"fmt"

	gormModels "soultrack/followup/internal/models/gorm"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

func (r *MemberRepository) Create(ctx context.Context, member *gormModels.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// Delete removes a member by id. It is the compensation step of a failed
// hand-off.
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.Member{}).Error; err != nil {
		return fmt.Errorf("failed to delete member %d: %w", id, err)
	}
	return nil
}
