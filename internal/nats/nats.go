package nats

import (
	"context"
	"log/slog"
	"time"

	"reviewbot/internal/config"

	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	appName = "reviewbot"

	// AcceptedSubject carries accepted posts to the publication consumer.
	AcceptedSubject = appName + ".accepted"
)

type NATS struct {
	Logger *slog.Logger
	Config *config.Config

	JS jetstream.JetStream
}

func (n *NATS) Init(ctx context.Context) error {
	nc, err := libnats.Connect(n.Config.NATSURL)
	if err != nil {
		return err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}

	n.JS = js

	if n.Config.NATSInit {
		if err := n.initNATS(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (n *NATS) HealthCheck(context.Context) error {
	_, err := n.JS.Conn().RTT()
	return err
}

func (n *NATS) Shutdown(context.Context) error {
	return n.JS.Conn().Drain()
}

// Consumer returns the durable consumer the publication pipeline reads from.
func (n *NATS) Consumer(ctx context.Context, name string) (jetstream.Consumer, error) {
	return n.JS.CreateOrUpdateConsumer(ctx, appName, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: AcceptedSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
}

func (n *NATS) initNATS(ctx context.Context) error {
	n.Logger.Info("Initializing NATS")
	_, err := n.JS.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       appName,
		Subjects:   []string{appName + ".*"},
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return err
	}
	n.Logger.Info("Stream created or updated", "name", appName)

	return nil
}
