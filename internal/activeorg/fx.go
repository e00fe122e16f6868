package activeorg

import (
	"github.com/openorgs/orgd/internal/activeorg/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activeorg",
	fx.Provide(
		service.NewService,
	),
)
