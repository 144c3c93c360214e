// Package expiry times out posts nobody acted on. The scanner is the only
// source of the timeout terminal states; it races with human actions through
// the same conditional status update and simply loses when a human got there
// first.
package expiry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reviewbot/internal/config"
	"reviewbot/internal/core"
	"reviewbot/internal/review"
)

const scanBatchSize = 50

type Scanner struct {
	Logger  *slog.Logger
	Config  *config.Config
	Posts   core.PostRepository
	Machine *review.Machine
	Bot     core.Transport
}

func (s *Scanner) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "expiry.Scanner")
	return nil
}

func (s *Scanner) Run(ctx context.Context) error {
	interval := time.Duration(s.Config.ScanIntervalMinutes) * time.Minute

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scan(ctx); err != nil {
				s.Logger.Error("expiry scan failed", "error", err)
			}
		}
	}
}

func (s *Scanner) scan(ctx context.Context) error {
	threshold := time.Now().Add(-time.Duration(s.Config.MaxReviewHours) * time.Hour)

	posts, err := s.Posts.Expirable(ctx, threshold, scanBatchSize)
	if err != nil {
		return err
	}

	for i := range posts {
		s.expire(ctx, &posts[i])
	}

	return nil
}

func (s *Scanner) expire(ctx context.Context, post *core.Post) {
	kind := core.StatusReviewTimeout
	notice := "稿件审核超时"
	if post.IsDirectPost {
		kind = core.StatusConfirmTimeout
		notice = "稿件确认超时"
	}

	if err := s.Machine.Expire(ctx, post, kind); err != nil {
		// Someone acted on the post between the scan and the update.
		if !errors.Is(err, core.ErrStaleAction) {
			s.Logger.Error("failed to expire post", "post", post.ID, "error", err)
		}
		return
	}

	s.Logger.Info("post expired", "post", post.ID, "status", kind)

	if post.ManageMsgID != 0 {
		if err := s.Bot.EditText(ctx, post.ManageChatID, post.ManageMsgID, notice, nil); err != nil {
			s.Logger.Error("failed to degrade review message", "post", post.ID, "error", err)
		}
	}
	if post.OriginChatID != 0 {
		if err := s.Bot.SendTo(ctx, post.OriginChatID, notice+", 请重新投稿", false); err != nil {
			s.Logger.Error("failed to notify poster", "post", post.ID, "error", err)
		}
	}
}
