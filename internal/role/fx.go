package role

import (
	"github.com/openorgs/orgd/internal/role/service"
	"go.uber.org/fx"
)

var Module = fx.Module("role",
	fx.Provide(
		service.NewService,
	),
)
