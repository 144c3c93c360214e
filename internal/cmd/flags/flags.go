package flags

import (
	"fmt"
	"slices"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Aliases: []string{"d"},
	Usage:   "The URL of the PostgreSQL database",
	Value:   "postgres://localhost:5432/reviewbot?sslmode=disable",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var NATSUrl = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create streams, consumers, etc.",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "The address the metrics server listens on",
	Value:   ":8080",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var ReviewGroup = &cli.IntFlag{
	Name:     "review-group",
	Usage:    "The chat ID of the review group",
	Required: true,
	Sources:  cli.EnvVars("REVIEW_GROUP"),
}

var PublishChannel = &cli.IntFlag{
	Name:     "publish-channel",
	Usage:    "The chat ID of the publication channel",
	Required: true,
	Sources:  cli.EnvVars("PUBLISH_CHANNEL"),
}

var SecondChannel = &cli.IntFlag{
	Name:    "second-channel",
	Usage:   "The chat ID of the secondary publication channel",
	Sources: cli.EnvVars("SECOND_CHANNEL"),
}

var MaxReviewHours = &cli.IntFlag{
	Name:    "max-review-hours",
	Usage:   "How long a post may stay in review before it expires",
	Value:   48,
	Sources: cli.EnvVars("MAX_REVIEW_HOURS"),
}

var ScanInterval = &cli.IntFlag{
	Name:    "scan-interval-minutes",
	Usage:   "How often the expiry scanner wakes up",
	Value:   10,
	Sources: cli.EnvVars("SCAN_INTERVAL_MINUTES"),
}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}
