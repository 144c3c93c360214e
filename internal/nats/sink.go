package nats

import (
	"context"
	"encoding/json"
	"fmt"

	libnats "github.com/nats-io/nats.go"

	"reviewbot/internal/core"
)

// Sink queues accepted posts on the publication stream. The Nats-Msg-Id
// header dedupes redeliveries of the same transition.
type Sink struct {
	NATS *NATS
}

func (s *Sink) Queue(ctx context.Context, event core.AcceptedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &libnats.Msg{
		Subject: AcceptedSubject,
		Data:    payload,
		Header: libnats.Header{
			libnats.MsgIdHdr: []string{fmt.Sprintf("accepted-%d", event.PostID)},
		},
	}

	_, err = s.NATS.JS.PublishMsg(ctx, msg)
	return err
}
