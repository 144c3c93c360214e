package attachments

import (
	"context"

	"reviewbot/internal/core"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Insert(ctx context.Context, attachments ...core.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.DB.Model(&core.Attachment{}).WithContext(ctx).Create(&attachments).Error
}

func (r *Repository) ByPostID(ctx context.Context, postID int64) ([]core.Attachment, error) {
	var attachments []core.Attachment
	err := r.DB.Model(&core.Attachment{}).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		Find(&attachments).Error
	return attachments, err
}
