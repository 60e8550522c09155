package service

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"teams-meeting-bridge/internal/config"
	deliveryhttp "teams-meeting-bridge/internal/delivery/http"
	"teams-meeting-bridge/internal/infrastructure/database"
	"teams-meeting-bridge/internal/infrastructure/logger"
	"teams-meeting-bridge/internal/infrastructure/msauth"
	"teams-meeting-bridge/internal/infrastructure/msgraph"
	"teams-meeting-bridge/internal/infrastructure/redis"
	"teams-meeting-bridge/internal/infrastructure/repository"
	"teams-meeting-bridge/internal/server"
	"teams-meeting-bridge/internal/usecase"
)

// Modules is the full dependency graph of the bridge.
func Modules() fx.Option {
	return fx.Options(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		database.Module,
		redis.Module,
		msauth.Module,
		msgraph.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application owns the fx graph so the console runner and the Windows
// service handler share one start/stop path.
type Application struct {
	options fx.Option
	app     *fx.App
}

// NewApplication creates an Application over the full bridge graph
func NewApplication() *Application {
	return newApplication(Modules())
}

func newApplication(options fx.Option) *Application {
	return &Application{options: options}
}

// Start builds the graph and runs every OnStart hook. A failed start
// has already rolled back the hooks that did run.
func (a *Application) Start(ctx context.Context) error {
	a.app = fx.New(a.options)
	if err := a.app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	return nil
}

// Stop runs the OnStop hooks. Calling it before Start is a no-op.
func (a *Application) Stop(ctx context.Context) error {
	if a.app == nil {
		return nil
	}
	return a.app.Stop(ctx)
}

// Run starts the application and blocks until ctx is done or the process
// receives SIGINT/SIGTERM, then stops it.
func (a *Application) Run(ctx context.Context) error {
	startCtx, cancel := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return err
	}

	select {
	case <-a.app.Done():
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	return a.Stop(stopCtx)
}
