package core

import (
	"context"
	"database/sql"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

type DB interface {
	Model(a any) *gorm.DB
	DB() (*sql.DB, error)
}

type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Migrate(ctx context.Context, version uint) error
}

// PostRepository persists posts. UpdateReviewing is the concurrency-control
// primitive of the whole review flow: it applies the given column updates with
// a single conditional UPDATE guarded by status = Reviewing and reports
// whether a row was actually written. Whoever gets false lost the race.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id int64) (*Post, error)
	ByManageMsg(ctx context.Context, chatID int64, msgID int) (*Post, error)
	UpdateReviewing(ctx context.Context, id int64, updates map[string]any) (bool, error)
	SetManageMsg(ctx context.Context, id int64, chatID int64, msgID int) error
	SetPublicMsgID(ctx context.Context, id int64, msgID int) error
	Expirable(ctx context.Context, olderThan time.Time, limit int) ([]Post, error)
	CountByStatus(ctx context.Context) (map[PostStatus]int64, error)
}

type AttachmentRepository interface {
	Insert(ctx context.Context, attachments ...Attachment) error
	ByPostID(ctx context.Context, postID int64) ([]Attachment, error)
}

// ReasonCatalog looks up predefined rejection causes by their payload token.
type ReasonCatalog interface {
	Lookup(ctx context.Context, payload string) (*RejectReason, error)
	All(ctx context.Context) ([]RejectReason, error)
}

type ChannelRepository interface {
	ByChannelID(ctx context.Context, channelID int64) (*Channel, error)
	// Ensure returns the channel record, creating it with the Normal option
	// on first sight.
	Ensure(ctx context.Context, channelID int64, title string) (*Channel, error)
	UpdateOption(ctx context.Context, channelID int64, option ChannelOption) (*Channel, error)
}

type UserRepository interface {
	ByUserID(ctx context.Context, userID int64) (*User, error)
}

// Transport is the messaging collaborator the dispatcher drives. A nil
// keyboard strips the inline keyboard from the message.
type Transport interface {
	Updates() tgbotapi.UpdatesChannel
	EditText(ctx context.Context, chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	EditKeyboard(ctx context.Context, chatID int64, msgID int, keyboard *tgbotapi.InlineKeyboardMarkup) error
	Acknowledge(ctx context.Context, callbackID string, text string, alert bool) error
	Reply(ctx context.Context, to *tgbotapi.Message, text string, html bool, keyboard *tgbotapi.InlineKeyboardMarkup) error
	SendTo(ctx context.Context, chatID int64, text string, html bool) error
	SendPost(ctx context.Context, chatID int64, post *Post, attachments []Attachment, caption string) (int, error)
}

// AcceptedEvent is queued for the publication pipeline after an accept
// transition commits.
type AcceptedEvent struct {
	PostID     int64 `json:"post_id"`
	InPlan     bool  `json:"in_plan"`
	SecondCopy bool  `json:"second_copy"`
}

// AcceptedSink receives accepted posts for asynchronous publication. The sink
// is only ever invoked after the status write committed.
type AcceptedSink interface {
	Queue(ctx context.Context, event AcceptedEvent) error
}
