package cmd

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"reviewbot/internal/cmd/flags"
	"reviewbot/internal/config"
	"reviewbot/internal/expiry"
	"reviewbot/internal/metrics"
	"reviewbot/internal/nats"
	"reviewbot/internal/persistence"
	"reviewbot/internal/review"
	"reviewbot/internal/telegram"
	"reviewbot/pkg/relcheck"
)

var botCmd = &cli.Command{
	Name:  "bot",
	Usage: "Run the review bot: submission intake, review keyboard, expiry scanner",
	Flags: []cli.Flag{
		flags.DatabaseURL,
		flags.NATSUrl,
		flags.InitNATS,
		flags.MetricsAddr,
		flags.ReviewGroup,
		flags.PublishChannel,
		flags.SecondChannel,
		flags.MaxReviewHours,
		flags.ScanInterval,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&config.Secrets{}),
			persistence.Provide(),
			nats.Provide(),
			telegram.Provide(),
			pal.Provide(&review.Machine{}),
			pal.Provide(&review.Dispatcher{}),
			pal.Provide(&telegram.Bot{}),
			pal.Provide(&expiry.Scanner{}),
			pal.Provide(&metrics.Collector{}),
			pal.Provide(&metrics.Server{}),
			pal.Provide(&releaseNotice{}),
		)
	},
}

// releaseRepo is polled once at startup for a newer published version.
const releaseRepo = "zhulik/reviewbot"

type releaseNotice struct {
	Logger *slog.Logger
}

func (r *releaseNotice) RunConfig() pal.RunConfig {
	return pal.RunConfig{
		Wait: false,
	}
}

func (r *releaseNotice) Run(ctx context.Context) error {
	client := relcheck.NewClient()
	defer client.Close() //nolint:errcheck

	release, err := client.Latest(ctx, releaseRepo)
	if err != nil {
		r.Logger.Warn("release check failed", "error", err)
		return nil
	}

	if release.TagName != "v"+VERSION {
		r.Logger.Info("a newer release is available", "version", release.TagName, "url", release.HTMLURL)
	}
	return nil
}
