package repository

import "context"

type AuthFlowRepository interface {
	// Upsert stores the flow payload, overwriting any pending flow for the user
	Upsert(ctx context.Context, userID string, flowData []byte) error

	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteByDeviceCode removes the user's flow only if it is still the one
	// identified by deviceCode. It reports whether a row was removed.
	DeleteByDeviceCode(ctx context.Context, userID, deviceCode string) (bool, error)
}
