package server

import "go.uber.org/fx"

var Module = fx.Module("server",
	fx.Provide(NewServer),
	// nothing else depends on the server, so force its construction
	fx.Invoke(func(*Server) {}),
)
