package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"reviewbot/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Create(ctx context.Context, post *core.Post) error {
	return r.DB.Model(&core.Post{}).WithContext(ctx).Create(post).Error
}

func (r *Repository) ByID(ctx context.Context, id int64) (*core.Post, error) {
	var post core.Post
	err := r.DB.Model(&core.Post{}).WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", core.ErrNotFound, id)
		}
		return nil, err
	}
	return &post, nil
}

// ByManageMsg resolves the post behind a review-group control message.
func (r *Repository) ByManageMsg(ctx context.Context, chatID int64, msgID int) (*core.Post, error) {
	var post core.Post
	err := r.DB.Model(&core.Post{}).WithContext(ctx).
		Where("manage_chat_id = ?", chatID).
		Where("manage_msg_id = ?", msgID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no post for message %d", core.ErrNotFound, msgID)
		}
		return nil, err
	}
	return &post, nil
}

// UpdateReviewing applies updates only when the post is still Reviewing.
// The status check and the write are one statement, so of two racing
// operations the database lets exactly one through.
func (r *Repository) UpdateReviewing(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.DB.Model(&core.Post{}).WithContext(ctx).
		Where("id = ?", id).
		Where("status = ?", core.StatusReviewing).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) SetManageMsg(ctx context.Context, id int64, chatID int64, msgID int) error {
	return r.DB.Model(&core.Post{}).WithContext(ctx).
		Where("id = ?", id).
		Updates(map[string]any{"manage_chat_id": chatID, "manage_msg_id": msgID}).Error
}

func (r *Repository) SetPublicMsgID(ctx context.Context, id int64, msgID int) error {
	return r.DB.Model(&core.Post{}).WithContext(ctx).
		Where("id = ?", id).
		Update("public_msg_id", msgID).Error
}

// Expirable returns Reviewing posts untouched since olderThan, oldest first.
func (r *Repository) Expirable(ctx context.Context, olderThan time.Time, limit int) ([]core.Post, error) {
	var posts []core.Post
	err := r.DB.Model(&core.Post{}).WithContext(ctx).
		Where("status = ?", core.StatusReviewing).
		Where("updated_at < ?", olderThan).
		Order("updated_at").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *Repository) CountByStatus(ctx context.Context) (map[core.PostStatus]int64, error) {
	var rows []struct {
		Status core.PostStatus
		Count  int64
	}
	err := r.DB.Model(&core.Post{}).WithContext(ctx).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[core.PostStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
