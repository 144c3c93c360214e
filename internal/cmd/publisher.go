package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"reviewbot/internal/cmd/flags"
	"reviewbot/internal/config"
	"reviewbot/internal/metrics"
	"reviewbot/internal/nats"
	"reviewbot/internal/persistence"
	"reviewbot/internal/publish"
	"reviewbot/internal/telegram"
)

var publisherCmd = &cli.Command{
	Name:  "publisher",
	Usage: "Drain accepted posts from JetStream and send them to the publication channels",
	Flags: []cli.Flag{
		flags.DatabaseURL,
		flags.NATSUrl,
		flags.InitNATS,
		flags.MetricsAddr,
		flags.PublishChannel,
		flags.SecondChannel,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide(&config.Secrets{}),
			persistence.Provide(),
			nats.Provide(),
			telegram.Provide(),
			pal.Provide(&publish.Publisher{}),
			pal.Provide(&metrics.Server{}),
		)
	},
}
