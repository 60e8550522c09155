package usecase

import (
	"go.uber.org/fx"

	"teams-meeting-bridge/internal/infrastructure/msauth"
	"teams-meeting-bridge/internal/infrastructure/redis"
)

func provideDeviceFlowPoller(p *msauth.Poller) DeviceFlowPoller {
	return p
}

func provideUserLocker(r *redis.RedisClient) UserLocker {
	return r
}

var Module = fx.Module("usecase",
	fx.Provide(provideDeviceFlowPoller),
	fx.Provide(provideUserLocker),
	fx.Provide(NewAuthUsecase),
	fx.Provide(NewMeetingUsecase),
)
