package markup_test

import (
	"reflect"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/core"
	"reviewbot/internal/markup"
)

func spoiler(v bool) *bool { return &v }

// buttonLabel finds the button with the given callback data and returns its
// label, failing the test when it is missing.
func buttonLabel(t *testing.T, rows [][]tgbotapi.InlineKeyboardButton, data string) string {
	t.Helper()
	for _, row := range rows {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == data {
				return btn.Text
			}
		}
	}
	t.Fatalf("no button with callback data %q", data)
	return ""
}

func TestReviewKeyboardDeterministic(t *testing.T) {
	t.Parallel()

	a := markup.ReviewKeyboard(core.TagNSFW|core.TagWanAn, spoiler(true))
	b := markup.ReviewKeyboard(core.TagNSFW|core.TagWanAn, spoiler(true))

	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different layouts")
	}
}

func TestReviewKeyboardSpoilerRowOnlyWhenCapable(t *testing.T) {
	t.Parallel()

	without := markup.ReviewKeyboard(core.TagNone, nil)
	with := markup.ReviewKeyboard(core.TagNone, spoiler(false))

	if len(with.InlineKeyboard) != len(without.InlineKeyboard)+1 {
		t.Errorf("spoiler-capable layout has %d rows, incapable %d, want exactly one extra row",
			len(with.InlineKeyboard), len(without.InlineKeyboard))
	}

	for _, row := range without.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil && *btn.CallbackData == "review spoiler" {
				t.Error("spoiler button present for non-capable post")
			}
		}
	}

	if got := buttonLabel(t, with.InlineKeyboard, "review spoiler"); got != "☁️遮罩: 关" {
		t.Errorf("spoiler-off label = %q", got)
	}
	enabled := markup.ReviewKeyboard(core.TagNone, spoiler(true))
	if got := buttonLabel(t, enabled.InlineKeyboard, "review spoiler"); got != "☁️遮罩: 开" {
		t.Errorf("spoiler-on label = %q", got)
	}
}

func TestReviewKeyboardTagLabelsEncodeState(t *testing.T) {
	t.Parallel()

	on := markup.ReviewKeyboard(core.TagNSFW, nil)
	off := markup.ReviewKeyboard(core.TagNone, nil)

	onLabel := buttonLabel(t, on.InlineKeyboard, "review tag nsfw")
	offLabel := buttonLabel(t, off.InlineKeyboard, "review tag nsfw")

	if onLabel == offLabel {
		t.Errorf("NSFW toggle label does not encode state: %q", onLabel)
	}
	if onLabel != "#NSFW" {
		t.Errorf("enabled NSFW label = %q, want #NSFW", onLabel)
	}
}

func TestDirectPostKeyboardHasCancelAndAnonymous(t *testing.T) {
	t.Parallel()

	kb := markup.DirectPostKeyboard(true, core.TagNone, nil)

	if got := buttonLabel(t, kb.InlineKeyboard, "review anymouse"); got != "👻匿名投稿" {
		t.Errorf("anonymous-on label = %q", got)
	}
	buttonLabel(t, kb.InlineKeyboard, "review cancel")
	buttonLabel(t, kb.InlineKeyboard, "review accept")

	kb = markup.DirectPostKeyboard(false, core.TagNone, nil)
	if got := buttonLabel(t, kb.InlineKeyboard, "review anymouse"); got != "🤔保留来源" {
		t.Errorf("anonymous-off label = %q", got)
	}
}

func TestRejectReasonKeyboard(t *testing.T) {
	t.Parallel()

	reasons := []core.RejectReason{
		{Payload: "fuzzy", Name: "模糊"},
		{Payload: "duplicate", Name: "重复"},
		{Payload: "boring", Name: "无趣"},
		{Payload: "confusing", Name: "没懂"},
		{Payload: "deny", Name: "内容不合适"},
		{Payload: "qrcode", Name: "二维码"},
		{Payload: "other", Name: "其他原因"},
	}

	kb := markup.RejectReasonKeyboard(reasons)

	// 7 reasons in rows of 4 plus the back row.
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("got %d rows, want 3", len(kb.InlineKeyboard))
	}
	if got := buttonLabel(t, kb.InlineKeyboard, "reject qrcode"); got != "二维码" {
		t.Errorf("qrcode label = %q", got)
	}
	buttonLabel(t, kb.InlineKeyboard, "review reject back")
}

func TestChannelOptionKeyboard(t *testing.T) {
	t.Parallel()

	kb := markup.ChannelOptionKeyboard(-100123)

	buttonLabel(t, kb.InlineKeyboard, "channeloption -100123 normal")
	buttonLabel(t, kb.InlineKeyboard, "channeloption -100123 purgeorigin")
	buttonLabel(t, kb.InlineKeyboard, "channeloption -100123 autoreject")
}
