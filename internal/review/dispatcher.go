package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
	"reviewbot/internal/markup"
	"reviewbot/internal/textutil"
)

var callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reviewbot_callbacks_total",
	Help: "The total number of handled callback queries",
}, []string{"outcome"})

const (
	textPostNotFound   = "未找到稿件"
	textPostExpired    = "该稿件已过期, 无法操作"
	textAlreadyHandled = "请不要重复操作"
	textNoRight        = "无权操作"
	textPostCanceled   = "投稿已取消"
	textPostAccepted   = "✅ 稿件已采用"
)

// Dispatcher turns inbound interactions into guarded state machine calls and
// keeps the rendered keyboard consistent with the post afterwards.
type Dispatcher struct {
	Logger   *slog.Logger
	Config   *config.Config
	Machine  *Machine
	Posts    core.PostRepository
	Reasons  core.ReasonCatalog
	Channels core.ChannelRepository
	Bot      core.Transport
}

func (d *Dispatcher) Init(_ context.Context) error {
	d.Logger = d.Logger.With("component", "review.Dispatcher")
	return nil
}

// HandleCallback processes one button press. Unrecognized callback data is
// dropped without acknowledgement so stale keyboards from older builds stay
// harmless.
func (d *Dispatcher) HandleCallback(ctx context.Context, actor *core.User, query *tgbotapi.CallbackQuery) error {
	action := ParseAction(query.Data)

	switch action.Kind {
	case ActionNone:
		callbacksTotal.WithLabelValues("ignored").Inc()
		return nil
	case ActionChannelOption:
		return d.handleChannelOption(ctx, actor, query, action.Args)
	default:
		return d.handleReviewAction(ctx, actor, query, action)
	}
}

func (d *Dispatcher) handleReviewAction(ctx context.Context, actor *core.User, query *tgbotapi.CallbackQuery, action Action) error {
	msg := query.Message
	chatID := msg.Chat.ID

	post, err := d.Posts.ByManageMsg(ctx, chatID, msg.MessageID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Strip the keyboard so the dangling control can't be pressed again.
			callbacksTotal.WithLabelValues("not_found").Inc()
			if err := d.Bot.Acknowledge(ctx, query.ID, textPostNotFound, true); err != nil {
				return err
			}
			return d.Bot.EditKeyboard(ctx, chatID, msg.MessageID, nil)
		}
		return err
	}

	if post.Status.IsExpired() {
		callbacksTotal.WithLabelValues("expired").Inc()
		if err := d.Bot.Acknowledge(ctx, query.ID, textPostExpired, false); err != nil {
			return err
		}
		return d.Bot.EditText(ctx, chatID, msg.MessageID, textPostExpired, nil)
	}

	if post.Status.IsTerminal() {
		callbacksTotal.WithLabelValues("stale").Inc()
		if err := d.Bot.Acknowledge(ctx, query.ID, textAlreadyHandled, true); err != nil {
			return err
		}
		return d.Bot.EditKeyboard(ctx, chatID, msg.MessageID, nil)
	}

	if !d.allowed(actor, post, action) {
		callbacksTotal.WithLabelValues("forbidden").Inc()
		return d.Bot.Acknowledge(ctx, query.ID, textNoRight, true)
	}

	err = d.invoke(ctx, actor, post, query, action)
	if err != nil {
		return d.surface(ctx, query, err)
	}
	callbacksTotal.WithLabelValues("ok").Inc()
	return nil
}

// allowed checks the actor's permission for the action. Direct posts are
// operated by their poster; everything else needs the review right. Cancel
// is always poster-only.
func (d *Dispatcher) allowed(actor *core.User, post *core.Post, action Action) bool {
	if action.Kind == ActionCancel {
		return actor.UserID == post.PosterUID
	}
	if post.IsDirectPost {
		return actor.UserID == post.PosterUID
	}
	return actor.HasRight(core.RightReviewPost)
}

// surface maps a machine rejection to the user-visible acknowledgement
// without altering the message; stale actions additionally lose their
// keyboard.
func (d *Dispatcher) surface(ctx context.Context, query *tgbotapi.CallbackQuery, err error) error {
	switch {
	case errors.Is(err, core.ErrStaleAction):
		callbacksTotal.WithLabelValues("stale").Inc()
		if ackErr := d.Bot.Acknowledge(ctx, query.ID, textAlreadyHandled, true); ackErr != nil {
			return ackErr
		}
		return d.Bot.EditKeyboard(ctx, query.Message.Chat.ID, query.Message.MessageID, nil)
	case errors.Is(err, core.ErrNotApplicable):
		callbacksTotal.WithLabelValues("not_applicable").Inc()
		return d.Bot.Acknowledge(ctx, query.ID, "当前稿件类型无法设置遮罩", true)
	case errors.Is(err, core.ErrForbidden):
		callbacksTotal.WithLabelValues("forbidden").Inc()
		return d.Bot.Acknowledge(ctx, query.ID, textNoRight, true)
	case errors.Is(err, core.ErrInvalidInput):
		callbacksTotal.WithLabelValues("invalid").Inc()
		return d.Bot.Acknowledge(ctx, query.ID, "参数有误", true)
	default:
		callbacksTotal.WithLabelValues("error").Inc()
		return err
	}
}

func (d *Dispatcher) invoke(ctx context.Context, actor *core.User, post *core.Post, query *tgbotapi.CallbackQuery, action Action) error {
	chatID := query.Message.Chat.ID
	msgID := query.Message.MessageID

	switch action.Kind {
	case ActionRejectMenu:
		// Phase switch only: the picker exists in the rendered keyboard, the
		// post stays Reviewing.
		reasons, err := d.Reasons.All(ctx)
		if err != nil {
			return err
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, "请选择拒稿原因", false); err != nil {
			return err
		}
		kb := markup.RejectReasonKeyboard(reasons)
		return d.Bot.EditKeyboard(ctx, chatID, msgID, &kb)

	case ActionRejectBack:
		kb := markup.ReviewKeyboard(post.Tags, spoilerFlag(post))
		return d.Bot.EditKeyboard(ctx, chatID, msgID, &kb)

	case ActionSpoiler:
		if err := d.Machine.SetSpoiler(ctx, post, !post.HasSpoiler); err != nil {
			return err
		}
		ack := "禁用遮罩"
		if post.HasSpoiler {
			ack = "启用遮罩"
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, ack, false); err != nil {
			return err
		}
		return d.refreshKeyboard(ctx, post, chatID, msgID)

	case ActionAnonymous:
		if err := d.Machine.SetAnonymous(ctx, post, !post.Anonymous); err != nil {
			return err
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, "可以使用命令 /anonymous 切换默认匿名投稿", false); err != nil {
			return err
		}
		return d.refreshKeyboard(ctx, post, chatID, msgID)

	case ActionTag:
		if err := d.Machine.ToggleTag(ctx, post, action.Arg); err != nil {
			if errors.Is(err, core.ErrInvalidInput) {
				return d.Bot.Acknowledge(ctx, query.ID, fmt.Sprintf("未知的标签 %s", action.Arg), true)
			}
			return err
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, "已更新标签", false); err != nil {
			return err
		}
		return d.refreshKeyboard(ctx, post, chatID, msgID)

	case ActionAccept, ActionAcceptSecond, ActionInPlan:
		inPlan := action.Kind == ActionInPlan
		second := action.Kind == ActionAcceptSecond
		if err := d.Machine.Accept(ctx, post, actor, inPlan, second); err != nil {
			return err
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, textPostAccepted, false); err != nil {
			return err
		}
		return d.Bot.EditText(ctx, chatID, msgID, textPostAccepted, nil)

	case ActionCancel:
		if err := d.Machine.Cancel(ctx, post, actor); err != nil {
			return err
		}
		if err := d.Bot.Acknowledge(ctx, query.ID, textPostCanceled, false); err != nil {
			return err
		}
		return d.Bot.EditText(ctx, chatID, msgID, textPostCanceled, nil)

	case ActionRejectReason:
		return d.rejectWithCatalogReason(ctx, actor, post, query, action.Arg)

	default:
		return nil
	}
}

func (d *Dispatcher) rejectWithCatalogReason(ctx context.Context, actor *core.User, post *core.Post, query *tgbotapi.CallbackQuery, payload string) error {
	reason, err := d.Reasons.Lookup(ctx, payload)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return d.Bot.Acknowledge(ctx, query.ID, fmt.Sprintf("找不到 %s 对应的拒绝理由", payload), true)
		}
		return err
	}

	if err := d.Machine.Reject(ctx, post, actor, *reason); err != nil {
		return err
	}

	rejected := fmt.Sprintf("已拒绝该稿件, 理由: %s", reason.Name)
	if err := d.Bot.Acknowledge(ctx, query.ID, rejected, false); err != nil {
		return err
	}
	if err := d.Bot.EditText(ctx, query.Message.Chat.ID, query.Message.MessageID, rejected, nil); err != nil {
		return err
	}

	d.notifyRejected(ctx, post, reason.FullText)
	return nil
}

// notifyRejected tells the poster. Delivery failures don't undo the already
// committed transition.
func (d *Dispatcher) notifyRejected(ctx context.Context, post *core.Post, fullText string) {
	if post.OriginChatID == 0 {
		return
	}
	notice := fmt.Sprintf("抱歉, 您的稿件未通过审核\n拒绝理由: %s", fullText)
	if err := d.Bot.SendTo(ctx, post.OriginChatID, notice, true); err != nil {
		d.Logger.Error("failed to notify poster", "post", post.ID, "error", err)
	}
}

// refreshKeyboard re-renders the layout for the post's phase from its
// current persisted state.
func (d *Dispatcher) refreshKeyboard(ctx context.Context, post *core.Post, chatID int64, msgID int) error {
	var kb tgbotapi.InlineKeyboardMarkup
	if post.IsDirectPost {
		kb = markup.DirectPostKeyboard(post.Anonymous, post.Tags, spoilerFlag(post))
	} else {
		kb = markup.ReviewKeyboard(post.Tags, spoilerFlag(post))
	}
	return d.Bot.EditKeyboard(ctx, chatID, msgID, &kb)
}

func (d *Dispatcher) handleChannelOption(ctx context.Context, actor *core.User, query *tgbotapi.CallbackQuery, args []string) error {
	if !actor.HasRight(core.RightSuperCmd) {
		return d.Bot.Acknowledge(ctx, query.ID, textNoRight, true)
	}

	text, err := d.updateChannelOption(ctx, args)
	if err != nil {
		return err
	}

	return d.Bot.EditText(ctx, query.Message.Chat.ID, query.Message.MessageID, text, nil)
}

func (d *Dispatcher) updateChannelOption(ctx context.Context, args []string) (string, error) {
	if len(args) != 2 {
		return "参数有误", nil
	}

	channelID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "参数有误", nil
	}

	var option core.ChannelOption
	switch args[1] {
	case "normal":
		option = core.ChannelOptionNormal
	case "purgeorigin":
		option = core.ChannelOptionPurgeOrigin
	case "autoreject":
		option = core.ChannelOptionAutoReject
	default:
		return fmt.Sprintf("未知的频道选项 %s", args[1]), nil
	}

	channel, err := d.Channels.UpdateOption(ctx, channelID, option)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Sprintf("找不到频道 %d", channelID), nil
		}
		return "", err
	}

	return fmt.Sprintf("来自 %s 频道的稿件今后将被 %s", channel.ChannelTitle, option), nil
}

// HandleCommand processes a slash command issued as a reply to a review
// message. The keyword is matched case-insensitively.
func (d *Dispatcher) HandleCommand(ctx context.Context, actor *core.User, msg *tgbotapi.Message, keyword string, args []string) error {
	switch strings.ToUpper(keyword) {
	case "NO":
		return d.commandNo(ctx, actor, msg, args)
	case "EDIT":
		return d.commandEdit(ctx, actor, msg, args)
	case "CHANNELOPTION":
		return d.commandChannelOption(ctx, actor, msg)
	default:
		return nil
	}
}

// resolveRepliedPost finds the Reviewing post behind the review message the
// command replies to, returning a user-facing refusal instead of the post
// when any precondition fails.
func (d *Dispatcher) resolveRepliedPost(ctx context.Context, msg *tgbotapi.Message) (*core.Post, string) {
	if msg.ReplyToMessage == nil {
		return nil, "请回复审核消息"
	}

	post, err := d.Posts.ByManageMsg(ctx, msg.Chat.ID, msg.ReplyToMessage.MessageID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, textPostNotFound
		}
		d.Logger.Error("failed to resolve replied post", "error", err)
		return nil, "内部错误"
	}

	if post.Status != core.StatusReviewing {
		return nil, "仅能编辑状态为审核中的稿件"
	}

	return post, ""
}

func (d *Dispatcher) commandNo(ctx context.Context, actor *core.User, msg *tgbotapi.Message, args []string) error {
	text, err := func() (string, error) {
		if msg.Chat.ID != d.Config.ReviewGroupID {
			return "该命令仅限审核群内使用", nil
		}
		if !actor.HasRight(core.RightReviewPost) {
			return textNoRight, nil
		}

		post, refusal := d.resolveRepliedPost(ctx, msg)
		if refusal != "" {
			return refusal, nil
		}

		reason := strings.TrimSpace(strings.Join(args, " "))
		if reason == "" {
			return "请输入拒绝理由", nil
		}

		rendered := textutil.RenderHTML(msg.ReplyToMessage)

		if err := d.Machine.Reject(ctx, post, actor, core.AdHocReason(reason)); err != nil {
			if errors.Is(err, core.ErrStaleAction) {
				return textAlreadyHandled, nil
			}
			return "", err
		}

		if err := d.Bot.EditText(ctx, msg.Chat.ID, msg.ReplyToMessage.MessageID,
			fmt.Sprintf("已拒绝该稿件, 理由: %s", reason), nil); err != nil {
			d.Logger.Error("failed to update review message", "post", post.ID, "error", err)
		}

		d.notifyRejected(ctx, post, rendered+"\n"+reason)

		return fmt.Sprintf("已拒绝该稿件, 理由: %s", reason), nil
	}()
	if err != nil {
		return err
	}

	return d.Bot.Reply(ctx, msg, text, true, nil)
}

func (d *Dispatcher) commandEdit(ctx context.Context, actor *core.User, msg *tgbotapi.Message, args []string) error {
	text, err := func() (string, error) {
		if !msg.Chat.IsPrivate() && msg.Chat.ID != d.Config.ReviewGroupID {
			return "该命令仅限审核群内使用", nil
		}
		if !actor.HasRight(core.RightReviewPost) {
			return textNoRight, nil
		}

		post, refusal := d.resolveRepliedPost(ctx, msg)
		if refusal != "" {
			return refusal, nil
		}

		caption := strings.TrimSpace(strings.Join(args, " "))
		if err := d.Machine.EditCaption(ctx, post, caption); err != nil {
			if errors.Is(err, core.ErrStaleAction) {
				return textAlreadyHandled, nil
			}
			return "", err
		}

		return "稿件描述已更新", nil
	}()
	if err != nil {
		return err
	}

	return d.Bot.Reply(ctx, msg, text, false, nil)
}

func (d *Dispatcher) commandChannelOption(ctx context.Context, actor *core.User, msg *tgbotapi.Message) error {
	var keyboard *tgbotapi.InlineKeyboardMarkup

	text, err := func() (string, error) {
		if msg.Chat.ID != d.Config.ReviewGroupID {
			return "该命令仅限审核群内使用", nil
		}
		if !actor.HasRight(core.RightSuperCmd) {
			return textNoRight, nil
		}
		if msg.ReplyToMessage == nil {
			return "请回复审核消息", nil
		}

		post, err := d.Posts.ByManageMsg(ctx, msg.Chat.ID, msg.ReplyToMessage.MessageID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return textPostNotFound, nil
			}
			return "", err
		}

		if !post.IsFromChannel() {
			return "不是来自其他频道的投稿, 无法设置频道选项", nil
		}

		channel, err := d.Channels.ByChannelID(ctx, post.ChannelID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return "未找到对应频道", nil
			}
			return "", err
		}

		kb := markup.ChannelOptionKeyboard(channel.ChannelID)
		keyboard = &kb

		return fmt.Sprintf("请选择针对来自 %s 的稿件的处理方式\n当前设置: %s", channel.ChannelTitle, channel.Option), nil
	}()
	if err != nil {
		return err
	}

	return d.Bot.Reply(ctx, msg, text, false, keyboard)
}

func spoilerFlag(post *core.Post) *bool {
	if !post.CanSpoiler {
		return nil
	}
	v := post.HasSpoiler
	return &v
}
