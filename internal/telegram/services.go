package telegram

import (
	"github.com/zhulik/pal"

	"reviewbot/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide[core.Transport](&Transport{}),
	)
}
