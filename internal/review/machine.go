package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reviewbot/internal/core"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reviewbot_post_transitions_total",
	Help: "The total number of committed post transitions",
}, []string{"status"})

// Machine owns the legal transitions of a post. Every mutation goes through
// the repository's conditional update, so of any set of concurrent operations
// on one post exactly one commits and the rest come back ErrStaleAction.
type Machine struct {
	Logger *slog.Logger
	Posts  core.PostRepository
	Sink   core.AcceptedSink
}

func (m *Machine) Init(_ context.Context) error {
	m.Logger = m.Logger.With("component", "review.Machine")
	return nil
}

// apply runs one conditional update and mirrors it into the in-memory post
// on success so the caller can re-render the keyboard from current state.
func (m *Machine) apply(ctx context.Context, post *core.Post, updates map[string]any, mirror func()) error {
	ok, err := m.Posts.UpdateReviewing(ctx, post.ID, updates)
	if err != nil {
		return fmt.Errorf("updating post %d: %w", post.ID, err)
	}
	if !ok {
		return core.ErrStaleAction
	}
	mirror()
	if status, changed := updates["status"]; changed {
		transitionsTotal.WithLabelValues(status.(core.PostStatus).String()).Inc()
	}
	return nil
}

// Accept publishes the post. inPlan routes it to the holding queue and
// secondCopy marks it for the secondary channel; both still count as
// accepted. The accepted event is queued only after the status write
// committed, and a queue failure never rolls the transition back.
func (m *Machine) Accept(ctx context.Context, post *core.Post, reviewer *core.User, inPlan, secondCopy bool) error {
	status := core.StatusAccepted
	if secondCopy {
		status = core.StatusAcceptedSecond
	}

	err := m.apply(ctx, post, map[string]any{
		"status":       status,
		"reviewer_uid": reviewer.UserID,
	}, func() {
		post.Status = status
		post.ReviewerUID = reviewer.UserID
	})
	if err != nil {
		return err
	}

	if err := m.Sink.Queue(ctx, core.AcceptedEvent{
		PostID:     post.ID,
		InPlan:     inPlan,
		SecondCopy: secondCopy,
	}); err != nil {
		// The transition is committed; publication is retried by the
		// publisher's own redelivery, so only log here.
		m.Logger.Error("failed to queue accepted post", "post", post.ID, "error", err)
	}

	return nil
}

// Reject attaches the reason and terminates the post.
func (m *Machine) Reject(ctx context.Context, post *core.Post, reviewer *core.User, reason core.RejectReason) error {
	if reason.Name == "" {
		return fmt.Errorf("%w: empty reject reason", core.ErrInvalidInput)
	}

	return m.apply(ctx, post, map[string]any{
		"status":        core.StatusRejected,
		"reviewer_uid":  reviewer.UserID,
		"reject_reason": reason.Name,
	}, func() {
		post.Status = core.StatusRejected
		post.ReviewerUID = reviewer.UserID
		post.RejectReason = reason.Name
	})
}

// Cancel releases the post. Only the original poster may cancel; no reviewer
// is recorded.
func (m *Machine) Cancel(ctx context.Context, post *core.Post, actor *core.User) error {
	if actor.UserID != post.PosterUID {
		return core.ErrForbidden
	}

	return m.apply(ctx, post, map[string]any{
		"status": core.StatusCanceled,
	}, func() {
		post.Status = core.StatusCanceled
	})
}

func (m *Machine) SetAnonymous(ctx context.Context, post *core.Post, anonymous bool) error {
	return m.apply(ctx, post, map[string]any{
		"anonymous": anonymous,
	}, func() {
		post.Anonymous = anonymous
	})
}

func (m *Machine) SetSpoiler(ctx context.Context, post *core.Post, hasSpoiler bool) error {
	if !post.CanSpoiler {
		return core.ErrNotApplicable
	}

	return m.apply(ctx, post, map[string]any{
		"has_spoiler": hasSpoiler,
	}, func() {
		post.HasSpoiler = hasSpoiler
	})
}

// ToggleTag flips the named tag bit. Toggling twice restores the original
// tag set.
func (m *Machine) ToggleTag(ctx context.Context, post *core.Post, name string) error {
	tag, ok := core.TagByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown tag %q", core.ErrInvalidInput, name)
	}

	tags := post.Tags.Toggle(tag)
	return m.apply(ctx, post, map[string]any{
		"tags": tags,
	}, func() {
		post.Tags = tags
	})
}

func (m *Machine) EditCaption(ctx context.Context, post *core.Post, text string) error {
	return m.apply(ctx, post, map[string]any{
		"text": text,
	}, func() {
		post.Text = text
	})
}

// Expire marks a post the scanner found overdue. It races with human actions
// through the same conditional update.
func (m *Machine) Expire(ctx context.Context, post *core.Post, kind core.PostStatus) error {
	if kind != core.StatusReviewTimeout && kind != core.StatusConfirmTimeout {
		return fmt.Errorf("%w: %s is not a timeout status", core.ErrInvalidInput, kind)
	}

	return m.apply(ctx, post, map[string]any{
		"status": kind,
	}, func() {
		post.Status = kind
	})
}
