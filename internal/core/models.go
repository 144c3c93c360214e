package core

import (
	"time"
)

// PostStatus is the review lifecycle state of a post. Reviewing is the only
// state transitions may originate from; negative values mean the post expired
// before anyone acted on it.
type PostStatus int

const (
	StatusConfirmTimeout PostStatus = -20
	StatusReviewTimeout  PostStatus = -10
	StatusCanceled       PostStatus = 10
	StatusReviewing      PostStatus = 20
	StatusRejected       PostStatus = 30
	StatusAccepted       PostStatus = 40
	StatusAcceptedSecond PostStatus = 41
)

func (s PostStatus) IsTerminal() bool {
	return s != StatusReviewing
}

func (s PostStatus) IsExpired() bool {
	return s < 0
}

func (s PostStatus) IsAccepted() bool {
	return s == StatusAccepted || s == StatusAcceptedSecond
}

func (s PostStatus) String() string {
	switch s {
	case StatusConfirmTimeout:
		return "confirm_timeout"
	case StatusReviewTimeout:
		return "review_timeout"
	case StatusCanceled:
		return "canceled"
	case StatusReviewing:
		return "reviewing"
	case StatusRejected:
		return "rejected"
	case StatusAccepted:
		return "accepted"
	case StatusAcceptedSecond:
		return "accepted_second"
	default:
		return "unknown"
	}
}

// Tags is a bitmask of the built-in content tags.
type Tags int32

const (
	TagNone   Tags = 0
	TagNSFW   Tags = 1
	TagFriend Tags = 2
	TagWanAn  Tags = 4
	TagAI     Tags = 8
)

func (t Tags) Has(tag Tags) bool {
	return t&tag != 0
}

func (t Tags) Toggle(tag Tags) Tags {
	return t ^ tag
}

// tagNames maps callback payload names to tag bits. The "spoiler" name is
// reserved: the action parser routes it to the spoiler toggle, so it must
// never appear here.
var tagNames = map[string]Tags{
	"nsfw":   TagNSFW,
	"friend": TagFriend,
	"wanan":  TagWanAn,
	"ai":     TagAI,
}

// TagByName resolves a callback payload name to a tag bit.
func TagByName(name string) (Tags, bool) {
	tag, ok := tagNames[name]
	return tag, ok
}

// Post is a single submission moving through the review workflow.
type Post struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PosterUID   int64
	ReviewerUID int64

	// Origin message in the poster's private chat, used for reply notices.
	OriginChatID int64
	OriginMsgID  int

	// Source channel when the submission was forwarded from another channel.
	ChannelID    int64
	ChannelMsgID int

	// The rendered control message in the review group (or the poster's chat
	// for direct posts). Callback queries resolve the post through it.
	ManageChatID int64
	ManageMsgID  int

	// Message ID in the publication channel, set after publishing.
	PublicMsgID int

	IsDirectPost bool
	Anonymous    bool
	CanSpoiler   bool
	HasSpoiler   bool
	Tags         Tags
	Text         string
	Status       PostStatus
	RejectReason string
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) IsFromChannel() bool {
	return p.ChannelID != 0
}

// MediaKind discriminates the supported attachment kinds.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaAudio     MediaKind = "audio"
	MediaVideo     MediaKind = "video"
	MediaVoice     MediaKind = "voice"
	MediaDocument  MediaKind = "document"
	MediaAnimation MediaKind = "animation"
)

// SpoilerCapable reports whether Telegram supports a spoiler overlay for the
// kind. It decides a post's spoiler-capable flag at creation time.
func (k MediaKind) SpoilerCapable() bool {
	switch k {
	case MediaPhoto, MediaVideo, MediaAnimation:
		return true
	default:
		return false
	}
}

// Attachment is the normalized descriptor of one piece of submitted media.
// Height and Width are -1 for kinds without spatial dimensions; FileName and
// MimeType are empty when the kind has none.
type Attachment struct {
	ID     int64 `gorm:"primaryKey"`
	PostID int64

	FileID       string
	FileUniqueID string
	FileName     string
	MimeType     string
	Size         int64
	Height       int
	Width        int
	Kind         MediaKind
}

func (Attachment) TableName() string {
	return "attachments"
}

// RejectReason is a moderation rejection cause. Catalog entries carry a stable
// Payload token addressable from button callbacks; ad-hoc reasons typed by a
// reviewer have no token and Name == FullText.
type RejectReason struct {
	ID       int64 `gorm:"primaryKey"`
	Payload  string
	Name     string
	FullText string
}

func (RejectReason) TableName() string {
	return "reject_reasons"
}

// AdHocReason builds a reason from free text typed by a reviewer.
func AdHocReason(text string) RejectReason {
	return RejectReason{Name: text, FullText: text}
}

// ChannelOption is the per-source-channel submission policy.
type ChannelOption int

const (
	ChannelOptionNormal      ChannelOption = 1
	ChannelOptionPurgeOrigin ChannelOption = 2
	ChannelOptionAutoReject  ChannelOption = 3
)

func (o ChannelOption) String() string {
	switch o {
	case ChannelOptionNormal:
		return "不做特殊处理"
	case ChannelOptionPurgeOrigin:
		return "抹除频道来源"
	case ChannelOptionAutoReject:
		return "拒绝此频道的投稿"
	default:
		return "未知的值"
	}
}

// Channel is a source channel posts get re-submitted from.
type Channel struct {
	ID           int64 `gorm:"primaryKey"`
	ChannelID    int64
	ChannelTitle string
	Option       ChannelOption
}

func (Channel) TableName() string {
	return "channels"
}

// Rights is the user permission bitmask.
type Rights int32

const (
	RightSendPost   Rights = 1
	RightReviewPost Rights = 2
	RightDirectPost Rights = 4
	RightSuperCmd   Rights = 8
)

// User is a known Telegram user with their permission flags.
type User struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64
	Name   string
	Rights Rights
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasRight(r Rights) bool {
	return u.Rights&r != 0
}
