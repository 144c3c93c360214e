package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"reviewbot/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) ByUserID(ctx context.Context, userID int64) (*core.User, error) {
	var user core.User
	err := r.DB.Model(&core.User{}).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", core.ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}
