package server

import (
	"context"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/delivery/http/router"
)

// Server serves the bridge API. The port is bound in OnStart so a busy
// port fails application start instead of surfacing in a goroutine.
type Server struct {
	app      *fiber.App
	addr     string
	listener net.Listener
	logger   *zap.Logger
}

func NewServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	r *router.Router,
	logger *zap.Logger,
) *Server {
	s := newServer(r.Setup(), fmt.Sprintf(":%d", cfg.App.Port), logger)
	lc.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})
	return s
}

func newServer(app *fiber.App, addr string, logger *zap.Logger) *Server {
	return &Server{
		app:    app,
		addr:   addr,
		logger: logger,
	}
}

// Addr reports the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.listener = ln

	s.logger.Info("HTTP server listening", zap.String("address", s.Addr()))

	go func() {
		if err := s.app.Listener(ln); err != nil {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}
