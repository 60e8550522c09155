package msauth

import "go.uber.org/fx"

var Module = fx.Module("msauth",
	fx.Provide(NewDeviceCodeProvider),
	fx.Provide(NewPoller),
	fx.Invoke(registerPollerLifecycle),
)
