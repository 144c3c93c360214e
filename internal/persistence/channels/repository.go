package channels

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

func (r *Repository) ByChannelID(ctx context.Context, channelID int64) (*core.Channel, error) {
	var channel core.Channel
	err := r.DB.Model(&core.Channel{}).WithContext(ctx).
		Where("channel_id = ?", channelID).
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: channel %d", core.ErrNotFound, channelID)
		}
		return nil, err
	}
	return &channel, nil
}

func (r *Repository) Ensure(ctx context.Context, channelID int64, title string) (*core.Channel, error) {
	channel, err := r.ByChannelID(ctx, channelID)
	if err == nil {
		return channel, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	channel = &core.Channel{
		ChannelID:    channelID,
		ChannelTitle: title,
		Option:       core.ChannelOptionNormal,
	}
	if err := r.DB.Model(&core.Channel{}).WithContext(ctx).Create(channel).Error; err != nil {
		return nil, err
	}
	return channel, nil
}

func (r *Repository) UpdateOption(ctx context.Context, channelID int64, option core.ChannelOption) (*core.Channel, error) {
	channel, err := r.ByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	err = r.DB.Model(&core.Channel{}).WithContext(ctx).
		Where("channel_id = ?", channelID).
		Update("option", option).Error
	if err != nil {
		return nil, err
	}

	channel.Option = option
	return channel, nil
}
