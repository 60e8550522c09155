package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/database"
)

const maxLogLimit = 200

type apiLogRepository struct {
	db     *database.Database
	logger *zap.Logger
}

// NewAPILogRepository creates a new API log repository
func NewAPILogRepository(db *database.Database, logger *zap.Logger) repository.APILogRepository {
	return &apiLogRepository{
		db:     db,
		logger: logger,
	}
}

// Save saves an API log entry to the database
func (r *apiLogRepository) Save(ctx context.Context, log *entity.APILog) error {
	query := `
		INSERT INTO api_logs (request_id, endpoint, method, request_body, response_body, status_code, duration_ms, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		log.RequestID,
		log.Endpoint,
		log.Method,
		log.RequestBody,
		log.ResponseBody,
		log.StatusCode,
		log.Duration,
		log.UserID,
		log.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save API log",
			zap.String("endpoint", log.Endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save API log: %w", err)
	}

	return nil
}

func (r *apiLogRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]entity.APILog, error) {
	query := `
		SELECT id, request_id, endpoint, method, request_body, response_body, status_code, duration_ms, user_id, created_at
		FROM api_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query API logs by user: %w", err)
	}
	return scanAPILogs(rows)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxLogLimit {
		return maxLogLimit
	}
	return limit
}

func scanAPILogs(rows *sql.Rows) ([]entity.APILog, error) {
	defer rows.Close()

	logs := make([]entity.APILog, 0)
	for rows.Next() {
		var l entity.APILog
		if err := rows.Scan(
			&l.ID,
			&l.RequestID,
			&l.Endpoint,
			&l.Method,
			&l.RequestBody,
			&l.ResponseBody,
			&l.StatusCode,
			&l.Duration,
			&l.UserID,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan API log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate API logs: %w", err)
	}
	return logs, nil
}
