// Package publish drains the accepted-post stream and sends posts to the
// publication channel. It runs strictly after the accept transition
// committed; a send failure here never touches the post's status.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
	"reviewbot/internal/nats"
	"reviewbot/internal/textutil"
	"reviewbot/pkg/retry"
)

const consumerName = "publisher"

var publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reviewbot_published_total",
	Help: "The total number of posts sent to a publication channel",
}, []string{"destination"})

type Publisher struct {
	Logger      *slog.Logger
	Config      *config.Config
	NATS        *nats.NATS
	Posts       core.PostRepository
	Attachments core.AttachmentRepository
	Bot         core.Transport

	it jetstream.MessagesContext
}

func (p *Publisher) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "publish.Publisher")
	return nil
}

func (p *Publisher) Run(ctx context.Context) error {
	consumer, err := p.NATS.Consumer(ctx, consumerName)
	if err != nil {
		return err
	}

	p.it, err = consumer.Messages()
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		p.it.Stop()
	}()

	ch := make(chan pips.D[jetstream.Msg])
	go func() {
		defer close(ch)
		for {
			msg, err := p.it.Next()
			if err != nil {
				if !errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					p.Logger.Error("consumer iterator failed", "error", err)
				}
				return
			}
			ch <- pips.NewD(msg)
		}
	}()

	return pips.New[jetstream.Msg, any]().
		Then(apply.Map(func(ctx context.Context, msg jetstream.Msg) (any, error) {
			return msg, p.handle(ctx, msg)
		})).
		Run(ctx, ch).
		Wait(ctx)
}

func (p *Publisher) handle(ctx context.Context, msg jetstream.Msg) error {
	var event core.AcceptedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		// Malformed events can't be retried into shape.
		p.Logger.Error("dropping malformed accepted event", "error", err)
		return msg.Ack()
	}

	err := retry.Do(func() error {
		return p.publish(ctx, event)
	}, 3)
	if err != nil {
		p.Logger.Error("failed to publish post, requesting redelivery", "post", event.PostID, "error", err)
		return msg.Nak()
	}

	return msg.Ack()
}

func (p *Publisher) publish(ctx context.Context, event core.AcceptedEvent) error {
	post, err := p.Posts.ByID(ctx, event.PostID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			p.Logger.Warn("accepted event for missing post", "post", event.PostID)
			return nil
		}
		return err
	}

	if !post.Status.IsAccepted() {
		p.Logger.Warn("accepted event for post in unexpected status", "post", post.ID, "status", post.Status)
		return nil
	}
	if post.PublicMsgID != 0 {
		// Redelivered event, the post is already out.
		return nil
	}

	if event.InPlan {
		// Held for the plan queue; the scheduled drain publishes it later.
		p.Logger.Info("post queued to plan", "post", post.ID)
		return nil
	}

	destination := p.Config.PublishChannelID
	label := "main"
	if event.SecondCopy && p.Config.SecondChannelID != 0 {
		destination = p.Config.SecondChannelID
		label = "second"
	}

	attachments, err := p.Attachments.ByPostID(ctx, post.ID)
	if err != nil {
		return err
	}

	msgID, err := p.Bot.SendPost(ctx, destination, post, attachments, Caption(post))
	if err != nil {
		return err
	}

	if err := p.Posts.SetPublicMsgID(ctx, post.ID, msgID); err != nil {
		return err
	}

	publishedTotal.WithLabelValues(label).Inc()
	p.Logger.Info("post published", "post", post.ID, "destination", destination)

	p.notifyPoster(ctx, post)
	return nil
}

func (p *Publisher) notifyPoster(ctx context.Context, post *core.Post) {
	if post.OriginChatID == 0 {
		return
	}
	if err := p.Bot.SendTo(ctx, post.OriginChatID, "稿件已发布, 感谢您的投稿", false); err != nil {
		p.Logger.Error("failed to notify poster", "post", post.ID, "error", err)
	}
}

// Caption renders the publication caption: tag line, the poster's text, and
// attribution unless the post is anonymous.
func Caption(post *core.Post) string {
	var parts []string

	if line := tagLine(post.Tags); line != "" {
		parts = append(parts, line)
	}
	if post.Text != "" {
		parts = append(parts, post.Text)
	}
	if !post.Anonymous {
		parts = append(parts, "via "+textutil.HTMLLink(fmt.Sprintf("tg://user?id=%d", post.PosterUID), "投稿人"))
	}

	return strings.Join(parts, "\n\n")
}

func tagLine(tags core.Tags) string {
	var names []string
	if tags.Has(core.TagNSFW) {
		names = append(names, "#NSFW")
	}
	if tags.Has(core.TagFriend) {
		names = append(names, "#我有一个朋友")
	}
	if tags.Has(core.TagWanAn) {
		names = append(names, "#晚安")
	}
	if tags.Has(core.TagAI) {
		names = append(names, "#AI绘图")
	}
	return strings.Join(names, " ")
}
