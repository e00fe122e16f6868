package audit

import (
	"github.com/openorgs/orgd/internal/audit/repository"
	"github.com/openorgs/orgd/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
