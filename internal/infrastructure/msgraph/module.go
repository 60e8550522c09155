package msgraph

import "go.uber.org/fx"

var Module = fx.Module("msgraph",
	fx.Provide(NewClient),
)
