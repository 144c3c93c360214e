// Package media converts inbound Telegram media objects into the canonical
// attachment shape stored alongside a post.
package media

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/core"
)

// noDimension marks kinds without spatial dimensions.
const noDimension = -1

// Normalize converts the media carried by one message into an attachment.
// It returns false for messages without a supported media kind; callers treat
// those as text-only posts, not as errors.
func Normalize(msg *tgbotapi.Message) (core.Attachment, bool) {
	switch {
	case len(msg.Photo) > 0:
		// Telegram sends several size variants, keep the best-quality copy.
		x := largestPhoto(msg.Photo)
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			Size:         int64(x.FileSize),
			Height:       x.Height,
			Width:        x.Width,
			Kind:         core.MediaPhoto,
		}, true

	case msg.Audio != nil:
		x := msg.Audio
		name := x.Title
		if name == "" {
			name = x.FileName
		}
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			FileName:     name,
			MimeType:     "",
			Size:         int64(x.FileSize),
			Height:       noDimension,
			Width:        noDimension,
			Kind:         core.MediaAudio,
		}, true

	case msg.Video != nil:
		x := msg.Video
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			FileName:     x.FileName,
			MimeType:     x.MimeType,
			Size:         int64(x.FileSize),
			Height:       x.Height,
			Width:        x.Width,
			Kind:         core.MediaVideo,
		}, true

	case msg.Voice != nil:
		x := msg.Voice
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			MimeType:     "",
			Size:         int64(x.FileSize),
			Height:       noDimension,
			Width:        noDimension,
			Kind:         core.MediaVoice,
		}, true

	case msg.Animation != nil:
		// Animation before document: Telegram sets both for GIFs.
		x := msg.Animation
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			FileName:     x.FileName,
			MimeType:     x.MimeType,
			Size:         int64(x.FileSize),
			Height:       x.Height,
			Width:        x.Width,
			Kind:         core.MediaAnimation,
		}, true

	case msg.Document != nil:
		x := msg.Document
		return core.Attachment{
			FileID:       x.FileID,
			FileUniqueID: x.FileUniqueID,
			FileName:     x.FileName,
			MimeType:     x.MimeType,
			Size:         int64(x.FileSize),
			Height:       noDimension,
			Width:        noDimension,
			Kind:         core.MediaDocument,
		}, true

	default:
		return core.Attachment{}, false
	}
}

// NormalizeAll normalizes an album, preserving input order and skipping
// messages without supported media.
func NormalizeAll(msgs []*tgbotapi.Message) []core.Attachment {
	attachments := make([]core.Attachment, 0, len(msgs))
	for _, msg := range msgs {
		if att, ok := Normalize(msg); ok {
			attachments = append(attachments, att)
		}
	}
	return attachments
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
