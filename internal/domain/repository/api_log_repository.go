package repository

import (
	"context"

	"teams-meeting-bridge/internal/domain/entity"
)

type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
	FindByUserID(ctx context.Context, userID string, limit int) ([]entity.APILog, error)
}
