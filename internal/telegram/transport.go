package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
)

// Transport implements the messaging collaborator on top of the Bot API.
// A nil keyboard strips the inline keyboard from the target message.
type Transport struct {
	Logger  *slog.Logger
	Secrets *config.Secrets

	api *tgbotapi.BotAPI
}

func (t *Transport) Init(_ context.Context) error {
	t.Logger = t.Logger.With("component", "telegram.Transport")

	api, err := tgbotapi.NewBotAPI(t.Secrets.BotToken)
	if err != nil {
		return err
	}
	t.api = api

	t.Logger.Info("authorized", "account", api.Self.UserName)
	return nil
}

func (t *Transport) Shutdown(_ context.Context) error {
	t.api.StopReceivingUpdates()
	return nil
}

// Updates opens the long-poll stream of incoming updates.
func (t *Transport) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return t.api.GetUpdatesChan(u)
}

func (t *Transport) EditText(_ context.Context, chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	cfg := tgbotapi.NewEditMessageText(chatID, msgID, text)
	cfg.ReplyMarkup = keyboard
	_, err := t.api.Request(cfg)
	return err
}

func (t *Transport) EditKeyboard(_ context.Context, chatID int64, msgID int, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if keyboard == nil {
		keyboard = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	cfg := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, *keyboard)
	_, err := t.api.Request(cfg)
	return err
}

func (t *Transport) Acknowledge(_ context.Context, callbackID string, text string, alert bool) error {
	var cfg tgbotapi.CallbackConfig
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	} else {
		cfg = tgbotapi.NewCallback(callbackID, text)
	}
	_, err := t.api.Request(cfg)
	return err
}

func (t *Transport) Reply(_ context.Context, to *tgbotapi.Message, text string, html bool, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ReplyToMessageID = to.MessageID
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	_, err := t.api.Send(msg)
	return err
}

func (t *Transport) SendTo(_ context.Context, chatID int64, text string, html bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	_, err := t.api.Send(msg)
	return err
}

// SendPost sends the post's content to a chat and returns the resulting
// message ID (the first message for albums).
func (t *Transport) SendPost(_ context.Context, chatID int64, post *core.Post, attachments []core.Attachment, caption string) (int, error) {
	switch len(attachments) {
	case 0:
		msg := tgbotapi.NewMessage(chatID, caption)
		msg.ParseMode = tgbotapi.ModeHTML
		sent, err := t.api.Send(msg)
		if err != nil {
			return 0, err
		}
		return sent.MessageID, nil

	case 1:
		sent, err := t.api.Send(mediaMessage(chatID, attachments[0], caption))
		if err != nil {
			return 0, err
		}
		return sent.MessageID, nil

	default:
		media := lo.Map(attachments, func(att core.Attachment, i int) any {
			c := ""
			if i == 0 {
				c = caption
			}
			return inputMedia(att, c)
		})
		sent, err := t.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media))
		if err != nil {
			return 0, err
		}
		return sent[0].MessageID, nil
	}
}

func mediaMessage(chatID int64, att core.Attachment, caption string) tgbotapi.Chattable {
	file := tgbotapi.FileID(att.FileID)

	switch att.Kind {
	case core.MediaPhoto:
		cfg := tgbotapi.NewPhoto(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	case core.MediaAudio:
		cfg := tgbotapi.NewAudio(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	case core.MediaVideo:
		cfg := tgbotapi.NewVideo(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	case core.MediaVoice:
		cfg := tgbotapi.NewVoice(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	case core.MediaAnimation:
		cfg := tgbotapi.NewAnimation(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	default:
		cfg := tgbotapi.NewDocument(chatID, file)
		cfg.Caption = caption
		cfg.ParseMode = tgbotapi.ModeHTML
		return cfg
	}
}

func inputMedia(att core.Attachment, caption string) any {
	file := tgbotapi.FileID(att.FileID)

	switch att.Kind {
	case core.MediaPhoto:
		m := tgbotapi.NewInputMediaPhoto(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m
	case core.MediaVideo:
		m := tgbotapi.NewInputMediaVideo(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m
	case core.MediaAudio:
		m := tgbotapi.NewInputMediaAudio(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m
	default:
		m := tgbotapi.NewInputMediaDocument(file)
		m.Caption = caption
		m.ParseMode = tgbotapi.ModeHTML
		return m
	}
}
