package reasons

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewbot/internal/core"
)

// Repository reads the predefined reject-reason catalog. Entries are seeded
// by migration; ad-hoc reasons never reach this table.
type Repository struct {
	DB core.DB
}

func (r *Repository) Lookup(ctx context.Context, payload string) (*core.RejectReason, error) {
	var reason core.RejectReason
	err := r.DB.Model(&core.RejectReason{}).WithContext(ctx).
		Where("payload = ?", payload).
		First(&reason).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reject reason %q", core.ErrNotFound, payload)
		}
		return nil, err
	}
	return &reason, nil
}

func (r *Repository) All(ctx context.Context) ([]core.RejectReason, error) {
	var reasons []core.RejectReason
	err := r.DB.Model(&core.RejectReason{}).WithContext(ctx).
		Order("id").
		Find(&reasons).Error
	return reasons, err
}
