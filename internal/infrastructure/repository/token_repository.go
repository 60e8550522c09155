package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teams-meeting-bridge/internal/domain/entity"
	"teams-meeting-bridge/internal/domain/repository"
	"teams-meeting-bridge/internal/infrastructure/database"
)

type tokenRepository struct {
	db *database.Database
}

func NewTokenRepository(db *database.Database) repository.TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) FindByUserID(ctx context.Context, userID string) (*entity.MSToken, error) {
	query := `
		SELECT user_id, access_token, expires_on, created_at, updated_at
		FROM ms_tokens
		WHERE user_id = $1
	`

	var token entity.MSToken
	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&token.UserID,
		&token.AccessToken,
		&token.ExpiresOn,
		&token.CreatedAt,
		&token.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ms token by user id: %w", err)
	}

	return &token, nil
}

func (r *tokenRepository) Save(ctx context.Context, userID, accessToken string, expiresOn time.Time) error {
	query := `
		INSERT INTO ms_tokens (user_id, access_token, expires_on, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			expires_on = EXCLUDED.expires_on,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.DB.ExecContext(ctx, query, userID, accessToken, expiresOn.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save ms token: %w", err)
	}

	return nil
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.DB.ExecContext(ctx, `DELETE FROM ms_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete ms token: %w", err)
	}
	return nil
}
