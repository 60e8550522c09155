package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teams-meeting-bridge/internal/config"
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if cfg.Logging.Format == "console" {
		zapConfig.Encoding = "console"
	}

	zapConfig.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Logging.Level))

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("app", cfg.App.Name)), nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// registerSync flushes buffered entries when the app stops.
func registerSync(lc fx.Lifecycle, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
}

var Module = fx.Module("logger",
	fx.Provide(NewLogger),
	fx.Invoke(registerSync),
)
