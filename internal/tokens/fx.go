package tokens

import "go.uber.org/fx"

var Module = fx.Module("tokens",
	fx.Provide(
		NewSettingsHolder,
		NewManager,
	),
)
