package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/delivery/http/handler"
	"teams-meeting-bridge/internal/domain/entity"
)

type Router struct {
	app            *fiber.App
	config         *config.Config
	healthHandler  *handler.HealthHandler
	authHandler    *handler.AuthHandler
	meetingHandler *handler.MeetingHandler
	logHandler     *handler.LogHandler
}

func NewRouter(
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	meetingHandler *handler.MeetingHandler,
	logHandler *handler.LogHandler,
	logger *zap.Logger,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: errorHandler(logger),
	})

	return &Router{
		app:            app,
		config:         cfg,
		healthHandler:  healthHandler,
		authHandler:    authHandler,
		meetingHandler: meetingHandler,
		logHandler:     logHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	r.app.Get("/health", r.healthHandler.Health)

	api := r.app.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.Post("/init", r.authHandler.InitAuth)
			auth.Get("/status/:userId", r.authHandler.CheckStatus)
			auth.Post("/logout/:userId", r.authHandler.Logout)
		}

		api.Post("/meetings", r.meetingHandler.CreateMeeting)

		// Logs hold meeting subjects and attendees, so they stay off unless enabled
		if r.config.Graph.ExposeLogs {
			api.Get("/logs", r.logHandler.GetLogs)
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

const msgInternalError = "Internal server error"

// errorHandler renders framework errors as {error}. Server errors get a
// fixed message; the detail only goes to the log.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		message := err.Error()
		if code >= fiber.StatusInternalServerError {
			logger.Error("Unhandled request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			message = msgInternalError
		}

		return c.Status(code).JSON(entity.NewErrorResponse(message))
	}
}
