package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
	"reviewbot/internal/markup"
	"reviewbot/internal/media"
	"reviewbot/internal/review"
)

// Bot runs the long-poll update loop and routes updates to the dispatcher.
// Private messages that are not commands are treated as submissions.
type Bot struct {
	Logger      *slog.Logger
	Config      *config.Config
	Transport   core.Transport
	Dispatcher  *review.Dispatcher
	Users       core.UserRepository
	Posts       core.PostRepository
	Attachments core.AttachmentRepository
	Channels    core.ChannelRepository
}

func (b *Bot) Init(_ context.Context) error {
	b.Logger = b.Logger.With("component", "telegram.Bot")
	return nil
}

func (b *Bot) Run(ctx context.Context) error {
	updates := b.Transport.Updates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handle(ctx, update); err != nil {
				b.Logger.Error("failed to handle update", "update", update.UpdateID, "error", err)
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		actor, err := b.actor(ctx, query.From)
		if err != nil {
			return err
		}
		return b.Dispatcher.HandleCallback(ctx, actor, query)

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return nil
		}
		actor, err := b.actor(ctx, msg.From)
		if err != nil {
			return err
		}

		if msg.IsCommand() {
			args := strings.Fields(msg.CommandArguments())
			return b.Dispatcher.HandleCommand(ctx, actor, msg, msg.Command(), args)
		}

		if msg.Chat.IsPrivate() {
			return b.intake(ctx, actor, msg)
		}
		return nil

	default:
		return nil
	}
}

// actor resolves the acting user. Users never seen before get the default
// submission right; elevated rights are granted in the database.
func (b *Bot) actor(ctx context.Context, from *tgbotapi.User) (*core.User, error) {
	user, err := b.Users.ByUserID(ctx, from.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	return &core.User{
		UserID: from.ID,
		Name:   strings.TrimSpace(from.FirstName + " " + from.LastName),
		Rights: core.RightSendPost,
	}, nil
}

// intake creates a Reviewing post from a private submission and renders the
// control message with the phase-appropriate keyboard.
func (b *Bot) intake(ctx context.Context, actor *core.User, msg *tgbotapi.Message) error {
	if !actor.HasRight(core.RightSendPost) {
		return b.Transport.Reply(ctx, msg, "无权投稿", false, nil)
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	attachment, hasMedia := media.Normalize(msg)
	if !hasMedia && text == "" {
		return b.Transport.Reply(ctx, msg, "不支持的稿件类型", false, nil)
	}

	post := &core.Post{
		PosterUID:    actor.UserID,
		OriginChatID: msg.Chat.ID,
		OriginMsgID:  msg.MessageID,
		IsDirectPost: actor.HasRight(core.RightDirectPost),
		CanSpoiler:   hasMedia && attachment.Kind.SpoilerCapable(),
		Text:         text,
		Status:       core.StatusReviewing,
	}

	if refusal, err := b.applyChannelPolicy(ctx, post, msg); err != nil {
		return err
	} else if refusal != "" {
		return b.Transport.Reply(ctx, msg, refusal, false, nil)
	}

	if err := b.Posts.Create(ctx, post); err != nil {
		return err
	}

	if hasMedia {
		attachment.PostID = post.ID
		if err := b.Attachments.Insert(ctx, attachment); err != nil {
			return err
		}
	}

	return b.renderControl(ctx, post, msg)
}

// applyChannelPolicy records the source channel of a forwarded submission
// and applies its configured option. A non-empty refusal rejects the intake.
func (b *Bot) applyChannelPolicy(ctx context.Context, post *core.Post, msg *tgbotapi.Message) (string, error) {
	if msg.ForwardFromChat == nil || !msg.ForwardFromChat.IsChannel() {
		return "", nil
	}

	channel, err := b.Channels.Ensure(ctx, msg.ForwardFromChat.ID, msg.ForwardFromChat.Title)
	if err != nil {
		return "", err
	}

	switch channel.Option {
	case core.ChannelOptionAutoReject:
		return "不接受来自此频道的投稿", nil
	case core.ChannelOptionPurgeOrigin:
		return "", nil
	default:
		post.ChannelID = channel.ChannelID
		post.ChannelMsgID = msg.ForwardFromMessageID
		return "", nil
	}
}

func (b *Bot) renderControl(ctx context.Context, post *core.Post, msg *tgbotapi.Message) error {
	attachments, err := b.Attachments.ByPostID(ctx, post.ID)
	if err != nil {
		return err
	}

	var (
		manageChat int64
		keyboard   tgbotapi.InlineKeyboardMarkup
	)
	hasSpoiler := spoilerFlag(post)

	if post.IsDirectPost {
		manageChat = post.OriginChatID
		keyboard = markup.DirectPostKeyboard(post.Anonymous, post.Tags, hasSpoiler)
	} else {
		manageChat = b.Config.ReviewGroupID
		keyboard = markup.ReviewKeyboard(post.Tags, hasSpoiler)
	}

	manageMsgID, err := b.Transport.SendPost(ctx, manageChat, post, attachments, post.Text)
	if err != nil {
		return err
	}

	if err := b.Transport.EditKeyboard(ctx, manageChat, manageMsgID, &keyboard); err != nil {
		return err
	}

	post.ManageChatID = manageChat
	post.ManageMsgID = manageMsgID
	if err := b.Posts.SetManageMsg(ctx, post.ID, manageChat, manageMsgID); err != nil {
		return err
	}

	if !post.IsDirectPost {
		return b.Transport.Reply(ctx, msg, "投稿成功, 请等待审核", false, nil)
	}
	return nil
}

func spoilerFlag(post *core.Post) *bool {
	if !post.CanSpoiler {
		return nil
	}
	v := post.HasSpoiler
	return &v
}
