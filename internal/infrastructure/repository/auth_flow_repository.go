package repository

import (
	"context"
	"fmt"
	"time"

	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/database"
)

type authFlowRepository struct {
	db *database.Database
}

func NewAuthFlowRepository(db *database.Database) repository.AuthFlowRepository {
	return &authFlowRepository{
		db: db,
	}
}

func (r *authFlowRepository) Upsert(ctx context.Context, userID string, flowData []byte) error {
	// Last writer wins: a newer flow replaces any pending one
	query := `
		INSERT INTO ms_auth_flow (user_id, flow_data, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(user_id) DO UPDATE SET
			flow_data = EXCLUDED.flow_data,
			created_at = EXCLUDED.created_at
	`

	_, err := r.db.DB.ExecContext(ctx, query, userID, string(flowData), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert auth flow: %w", err)
	}

	return nil
}

func (r *authFlowRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM ms_auth_flow WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete auth flow: %w", err)
	}
	return nil
}

func (r *authFlowRepository) DeleteByDeviceCode(ctx context.Context, userID, deviceCode string) (bool, error) {
	query := `
		DELETE FROM ms_auth_flow
		WHERE user_id = $1 AND flow_data->>'device_code' = $2
	`

	res, err := r.db.DB.ExecContext(ctx, query, userID, deviceCode)
	if err != nil {
		return false, fmt.Errorf("failed to delete completed auth flow: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete completed auth flow: %w", err)
	}
	return n > 0, nil
}
