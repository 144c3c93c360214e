package config

import (
	"context"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the operational knobs, populated from CLI flags (each flag
// also has an env-var source).
type Config struct {
	DatabaseURL string `flag:"database-url"`
	NATSURL     string `flag:"nats-url"`
	NATSInit    bool   `flag:"nats-init"`
	LogLevel    string `flag:"log-level"`
	MetricsAddr string `flag:"metrics-addr"`

	// ReviewGroupID is the chat the moderators work in; PublishChannelID and
	// SecondChannelID are the publication destinations.
	ReviewGroupID    int64 `flag:"review-group"`
	PublishChannelID int64 `flag:"publish-channel"`
	SecondChannelID  int64 `flag:"second-channel"`

	// Posts still Reviewing after MaxReviewHours expire; the scanner wakes
	// every ScanIntervalMinutes.
	MaxReviewHours      int `flag:"max-review-hours"`
	ScanIntervalMinutes int `flag:"scan-interval-minutes"`
}

// Secrets come from the environment only, never from flags.
type Secrets struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
}

func (s *Secrets) Init(_ context.Context) error {
	return envconfig.Process("reviewbot", s)
}
