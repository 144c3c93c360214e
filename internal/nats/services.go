package nats

import (
	"github.com/zhulik/pal"

	"reviewbot/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide(&NATS{}),
		pal.Provide[core.AcceptedSink](&Sink{}),
	)
}
