package persistence

import (
	"github.com/zhulik/pal"

	"reviewbot/internal/core"
	"reviewbot/internal/persistence/attachments"
	"reviewbot/internal/persistence/channels"
	"reviewbot/internal/persistence/posts"
	"reviewbot/internal/persistence/reasons"
	"reviewbot/internal/persistence/users"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide[core.DB](&DB{}),
		pal.Provide[core.Migrator](&Migrator{}),
		pal.Provide[core.PostRepository](&posts.Repository{}),
		pal.Provide[core.AttachmentRepository](&attachments.Repository{}),
		pal.Provide[core.ReasonCatalog](&reasons.Repository{}),
		pal.Provide[core.ChannelRepository](&channels.Repository{}),
		pal.Provide[core.UserRepository](&users.Repository{}),
	)
}
