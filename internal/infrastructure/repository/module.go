package repository

import (
	"go.uber.org/fx"

	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/msgraph"
)

// provideAPILogSaver exposes the API log repository to the Graph client
func provideAPILogSaver(repo repository.APILogRepository) msgraph.APILogSaver {
	return repo
}

var Module = fx.Module("repository",
	fx.Provide(NewTokenRepository),
	fx.Provide(NewAuthFlowRepository),
	fx.Provide(NewAPILogRepository),
	fx.Provide(provideAPILogSaver),
)
