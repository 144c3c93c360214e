package review_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
	"reviewbot/internal/review"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePosts mimics the conditional-update semantics of the real repository:
// UpdateReviewing writes only while the stored post is still Reviewing.
type fakePosts struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*core.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[int64]*core.Post{}}
}

func (f *fakePosts) Create(_ context.Context, post *core.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	post.ID = f.seq
	clone := *post
	f.byID[post.ID] = &clone
	return nil
}

func (f *fakePosts) ByID(_ context.Context, id int64) (*core.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	post, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", core.ErrNotFound, id)
	}
	clone := *post
	return &clone, nil
}

func (f *fakePosts) ByManageMsg(_ context.Context, chatID int64, msgID int) (*core.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, post := range f.byID {
		if post.ManageChatID == chatID && post.ManageMsgID == msgID {
			clone := *post
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: no post for message %d", core.ErrNotFound, msgID)
}

func (f *fakePosts) UpdateReviewing(_ context.Context, id int64, updates map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	post, ok := f.byID[id]
	if !ok || post.Status != core.StatusReviewing {
		return false, nil
	}

	for column, value := range updates {
		switch column {
		case "status":
			post.Status = value.(core.PostStatus)
		case "reviewer_uid":
			post.ReviewerUID = value.(int64)
		case "reject_reason":
			post.RejectReason = value.(string)
		case "anonymous":
			post.Anonymous = value.(bool)
		case "has_spoiler":
			post.HasSpoiler = value.(bool)
		case "tags":
			post.Tags = value.(core.Tags)
		case "text":
			post.Text = value.(string)
		default:
			return false, fmt.Errorf("unexpected column %q", column)
		}
	}
	return true, nil
}

func (f *fakePosts) SetManageMsg(_ context.Context, id int64, chatID int64, msgID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byID[id].ManageChatID = chatID
	f.byID[id].ManageMsgID = msgID
	return nil
}

func (f *fakePosts) SetPublicMsgID(_ context.Context, id int64, msgID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byID[id].PublicMsgID = msgID
	return nil
}

func (f *fakePosts) Expirable(_ context.Context, olderThan time.Time, limit int) ([]core.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var posts []core.Post
	for _, post := range f.byID {
		if post.Status == core.StatusReviewing && post.UpdatedAt.Before(olderThan) && len(posts) < limit {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}

func (f *fakePosts) CountByStatus(_ context.Context) (map[core.PostStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[core.PostStatus]int64{}
	for _, post := range f.byID {
		counts[post.Status]++
	}
	return counts, nil
}

type fakeSink struct {
	mu     sync.Mutex
	err    error
	events []core.AcceptedEvent
}

func (f *fakeSink) Queue(_ context.Context, event core.AcceptedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeReasons struct {
	reasons []core.RejectReason
}

func (f *fakeReasons) Lookup(_ context.Context, payload string) (*core.RejectReason, error) {
	for i := range f.reasons {
		if f.reasons[i].Payload == payload {
			clone := f.reasons[i]
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: reason %q", core.ErrNotFound, payload)
}

func (f *fakeReasons) All(_ context.Context) ([]core.RejectReason, error) {
	return f.reasons, nil
}

type fakeChannels struct {
	mu   sync.Mutex
	byID map[int64]*core.Channel
}

func newFakeChannels() *fakeChannels {
	return &fakeChannels{byID: map[int64]*core.Channel{}}
}

func (f *fakeChannels) ByChannelID(_ context.Context, channelID int64) (*core.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel, ok := f.byID[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: channel %d", core.ErrNotFound, channelID)
	}
	clone := *channel
	return &clone, nil
}

func (f *fakeChannels) Ensure(_ context.Context, channelID int64, title string) (*core.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if channel, ok := f.byID[channelID]; ok {
		clone := *channel
		return &clone, nil
	}
	channel := &core.Channel{ChannelID: channelID, ChannelTitle: title, Option: core.ChannelOptionNormal}
	f.byID[channelID] = channel
	clone := *channel
	return &clone, nil
}

func (f *fakeChannels) UpdateOption(_ context.Context, channelID int64, option core.ChannelOption) (*core.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel, ok := f.byID[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: channel %d", core.ErrNotFound, channelID)
	}
	channel.Option = option
	clone := *channel
	return &clone, nil
}

type ack struct {
	text  string
	alert bool
}

type textEdit struct {
	chatID   int64
	msgID    int
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

type keyboardEdit struct {
	chatID   int64
	msgID    int
	keyboard *tgbotapi.InlineKeyboardMarkup
}

type outboundMsg struct {
	chatID int64
	text   string
}

// fakeTransport records every outbound interaction.
type fakeTransport struct {
	mu            sync.Mutex
	acks          []ack
	textEdits     []textEdit
	keyboardEdits []keyboardEdit
	sent          []outboundMsg
	replies       []outboundMsg
}

func (f *fakeTransport) Updates() tgbotapi.UpdatesChannel {
	return nil
}

func (f *fakeTransport) EditText(_ context.Context, chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.textEdits = append(f.textEdits, textEdit{chatID, msgID, text, keyboard})
	return nil
}

func (f *fakeTransport) EditKeyboard(_ context.Context, chatID int64, msgID int, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keyboardEdits = append(f.keyboardEdits, keyboardEdit{chatID, msgID, keyboard})
	return nil
}

func (f *fakeTransport) Acknowledge(_ context.Context, _ string, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acks = append(f.acks, ack{text, alert})
	return nil
}

func (f *fakeTransport) Reply(_ context.Context, to *tgbotapi.Message, text string, _ bool, _ *tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.replies = append(f.replies, outboundMsg{to.Chat.ID, text})
	return nil
}

func (f *fakeTransport) SendTo(_ context.Context, chatID int64, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, outboundMsg{chatID, text})
	return nil
}

func (f *fakeTransport) SendPost(_ context.Context, chatID int64, _ *core.Post, _ []core.Attachment, caption string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, outboundMsg{chatID, caption})
	return 1000 + len(f.sent), nil
}

func (f *fakeTransport) lastAck() (ack, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.acks) == 0 {
		return ack{}, false
	}
	return f.acks[len(f.acks)-1], true
}

const (
	reviewGroupID = int64(-100900)
	posterChatID  = int64(777)
)

var (
	posterUser   = &core.User{UserID: 777, Name: "poster", Rights: core.RightSendPost}
	reviewerUser = &core.User{UserID: 888, Name: "reviewer", Rights: core.RightSendPost | core.RightReviewPost}
	superUser    = &core.User{UserID: 999, Name: "admin", Rights: core.RightSendPost | core.RightReviewPost | core.RightSuperCmd}
)

var catalogReasons = []core.RejectReason{
	{ID: 1, Payload: "fuzzy", Name: "模糊", FullText: "图片模糊/看不清"},
	{ID: 2, Payload: "duplicate", Name: "重复", FullText: "重复的稿件"},
	{ID: 3, Payload: "qrcode", Name: "二维码", FullText: "稿件包含二维码广告"},
}

type fixture struct {
	posts      *fakePosts
	sink       *fakeSink
	transport  *fakeTransport
	channels   *fakeChannels
	machine    *review.Machine
	dispatcher *review.Dispatcher
}

func newFixture() *fixture {
	posts := newFakePosts()
	sink := &fakeSink{}
	transport := &fakeTransport{}
	channels := newFakeChannels()

	machine := &review.Machine{
		Logger: discardLogger(),
		Posts:  posts,
		Sink:   sink,
	}

	dispatcher := &review.Dispatcher{
		Logger:   discardLogger(),
		Config:   &config.Config{ReviewGroupID: reviewGroupID},
		Machine:  machine,
		Posts:    posts,
		Reasons:  &fakeReasons{reasons: catalogReasons},
		Channels: channels,
		Bot:      transport,
	}

	return &fixture{
		posts:      posts,
		sink:       sink,
		transport:  transport,
		channels:   channels,
		machine:    machine,
		dispatcher: dispatcher,
	}
}

// seedPost creates a Reviewing post with its control message in the review
// group and returns the stored copy.
func (f *fixture) seedPost(mutate func(*core.Post)) *core.Post {
	post := &core.Post{
		PosterUID:    posterUser.UserID,
		OriginChatID: posterChatID,
		OriginMsgID:  10,
		CanSpoiler:   true,
		Status:       core.StatusReviewing,
	}
	if mutate != nil {
		mutate(post)
	}

	if err := f.posts.Create(context.Background(), post); err != nil {
		panic(err)
	}

	chatID := reviewGroupID
	if post.IsDirectPost {
		chatID = post.OriginChatID
	}
	msgID := int(5000 + post.ID)
	if err := f.posts.SetManageMsg(context.Background(), post.ID, chatID, msgID); err != nil {
		panic(err)
	}
	post.ManageChatID = chatID
	post.ManageMsgID = msgID

	return post
}

func callbackQuery(from *core.User, post *core.Post, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   fmt.Sprintf("cb-%d", post.ID),
		From: &tgbotapi.User{ID: from.UserID},
		Message: &tgbotapi.Message{
			MessageID: post.ManageMsgID,
			Chat:      &tgbotapi.Chat{ID: post.ManageChatID, Type: "supergroup"},
		},
		Data: data,
	}
}

func commandMessage(chatID int64, chatType string, replyTo *tgbotapi.Message) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID:      9000,
		Chat:           &tgbotapi.Chat{ID: chatID, Type: chatType},
		ReplyToMessage: replyTo,
	}
}
