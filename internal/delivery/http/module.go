package http

import (
	"go.uber.org/fx"

	"teams-meeting-bridge/internal/delivery/http/handler"
	"teams-meeting-bridge/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewHealthHandler,
		handler.NewAuthHandler,
		handler.NewMeetingHandler,
		handler.NewLogHandler,
		router.NewRouter,
	),
)
