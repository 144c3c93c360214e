// Package markup renders inline keyboards for the review workflow. Every
// builder is a pure function of the post state it receives, so the rendered
// control surface can always be regenerated from the persisted post.
package markup

import (
	"strconv"

	"github.com/samber/lo"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/core"
)

const (
	anonymousOn  = "👻匿名投稿"
	anonymousOff = "🤔保留来源"
	postCancel   = "❌取消"
	reviewReject = "❌拒绝"
	reviewAccept = "✅采用"
	rejectBack   = "🔙返回"

	spoilerOn  = "☁️遮罩: 开"
	spoilerOff = "☁️遮罩: 关"

	tagNSFWOn    = "#NSFW"
	tagNSFWOff   = "#N___"
	tagFriendOn  = "#我有一个朋友"
	tagFriendOff = "#我_____"
	tagWanAnOn   = "#晚安"
	tagWanAnOff  = "#晚_"
	tagAIOn      = "#AI绘图"
	tagAIOff     = "#AI__"
)

// rejectReasonColumns is how many reason buttons share a picker row.
const rejectReasonColumns = 4

func button(label, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, data)
}

func tagRows(tags core.Tags) [][]tgbotapi.InlineKeyboardButton {
	pick := func(on bool, onLabel, offLabel string) string {
		if on {
			return onLabel
		}
		return offLabel
	}

	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			button(pick(tags.Has(core.TagNSFW), tagNSFWOn, tagNSFWOff), "review tag nsfw"),
			button(pick(tags.Has(core.TagWanAn), tagWanAnOn, tagWanAnOff), "review tag wanan"),
		),
		tgbotapi.NewInlineKeyboardRow(
			button(pick(tags.Has(core.TagFriend), tagFriendOn, tagFriendOff), "review tag friend"),
			button(pick(tags.Has(core.TagAI), tagAIOn, tagAIOff), "review tag ai"),
		),
	}
}

// spoilerRow is present only when the post's media supports a spoiler
// overlay; hasSpoiler is nil otherwise.
func spoilerRow(hasSpoiler *bool) ([]tgbotapi.InlineKeyboardButton, bool) {
	if hasSpoiler == nil {
		return nil, false
	}
	label := spoilerOff
	if *hasSpoiler {
		label = spoilerOn
	}
	return tgbotapi.NewInlineKeyboardRow(button(label, "review spoiler")), true
}

// DirectPostKeyboard is the layout shown to the poster of a direct post: tag
// toggles, the anonymous toggle and cancel/accept.
func DirectPostKeyboard(anonymous bool, tags core.Tags, hasSpoiler *bool) tgbotapi.InlineKeyboardMarkup {
	rows := tagRows(tags)

	if row, ok := spoilerRow(hasSpoiler); ok {
		rows = append(rows, row)
	}

	anonymousLabel := anonymousOff
	if anonymous {
		anonymousLabel = anonymousOn
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(button(anonymousLabel, "review anymouse")),
		tgbotapi.NewInlineKeyboardRow(
			button(postCancel, "review cancel"),
			button(reviewAccept, "review accept"),
		),
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ReviewKeyboard is the main layout shown in the review group while a
// reviewer is deciding.
func ReviewKeyboard(tags core.Tags, hasSpoiler *bool) tgbotapi.InlineKeyboardMarkup {
	rows := tagRows(tags)

	if row, ok := spoilerRow(hasSpoiler); ok {
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button(reviewReject, "review reject"),
		button(reviewAccept, "review accept"),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RejectReasonKeyboard is the second phase of the reject flow: one button per
// catalog reason plus a back action. The picker phase lives only in this
// rendered keyboard, never in the post record.
func RejectReasonKeyboard(reasons []core.RejectReason) tgbotapi.InlineKeyboardMarkup {
	rows := lo.Map(lo.Chunk(reasons, rejectReasonColumns), func(chunk []core.RejectReason, _ int) []tgbotapi.InlineKeyboardButton {
		return lo.Map(chunk, func(reason core.RejectReason, _ int) tgbotapi.InlineKeyboardButton {
			return button(reason.Name, "reject "+reason.Payload)
		})
	})

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(rejectBack, "review reject back")))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ChannelOptionKeyboard picks the policy for posts re-submitted from the
// given source channel.
func ChannelOptionKeyboard(channelID int64) tgbotapi.InlineKeyboardMarkup {
	data := func(option string) string {
		return "channeloption " + formatID(channelID) + " " + option
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("不做特殊处理", data("normal"))),
		tgbotapi.NewInlineKeyboardRow(button("抹除频道来源", data("purgeorigin"))),
		tgbotapi.NewInlineKeyboardRow(button("拒绝此频道的投稿", data("autoreject"))),
	)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
