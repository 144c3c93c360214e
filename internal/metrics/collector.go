package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reviewbot/internal/core"
)

var (
	postsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reviewbot_posts_by_status",
		Help: "Number of posts per review status.",
	}, []string{"status"})
)

// Collector periodically samples post counts from the database.
type Collector struct {
	Logger *slog.Logger
	Posts  core.PostRepository
}

func (c *Collector) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.collect(ctx); err != nil {
				c.Logger.Error("failed to collect post counts", "error", err)
			}
		}
	}
}

func (c *Collector) collect(ctx context.Context) error {
	counts, err := c.Posts.CountByStatus(ctx)
	if err != nil {
		return err
	}

	for status, count := range counts {
		postsByStatus.WithLabelValues(status.String()).Set(float64(count))
	}
	return nil
}
