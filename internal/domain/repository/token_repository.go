package repository

import (
	"context"
	"time"

	"teams-meeting-bridge/internal/domain/entity"
)

type TokenRepository interface {
	// FindByUserID returns nil, nil when the user has no token on file
	FindByUserID(ctx context.Context, userID string) (*entity.MSToken, error)

	// Save inserts or replaces the token for a user
	Save(ctx context.Context, userID, accessToken string, expiresOn time.Time) error

	// DeleteByUserID removes the token; deleting a missing row is not an error
	DeleteByUserID(ctx context.Context, userID string) error
}
