package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

// DSN builds the PostgreSQL connection string, preferring the full URL.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

func NewDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	db, err := sql.Open(cfg.Database.Driver, DSN(&cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing database connection")
			return database.Close()
		},
	})

	return database, nil
}

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "ms_tokens",
		sql: `
	CREATE TABLE IF NOT EXISTS ms_tokens (
		user_id TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		expires_on TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`,
	},
	{
		name: "ms_auth_flow",
		sql: `
	CREATE TABLE IF NOT EXISTS ms_auth_flow (
		user_id TEXT PRIMARY KEY,
		flow_data JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`,
	},
	{
		name: "api_logs",
		sql: `
	CREATE TABLE IF NOT EXISTS api_logs (
		id BIGSERIAL PRIMARY KEY,
		request_id VARCHAR(64) DEFAULT '',
		endpoint TEXT NOT NULL,
		method VARCHAR(16) NOT NULL,
		request_body TEXT DEFAULT '',
		response_body TEXT DEFAULT '',
		status_code INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		user_id TEXT DEFAULT '',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`,
	},
	{
		name: "idx_api_logs_user_id",
		sql:  `CREATE INDEX IF NOT EXISTS idx_api_logs_user_id ON api_logs(user_id);`,
	},
}

func (d *Database) migrate() error {
	for _, m := range migrations {
		if _, err := d.DB.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
	}

	d.logger.Info("Database migrations completed successfully", zap.Int("count", len(migrations)))
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
