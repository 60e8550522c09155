package entity

import "time"

// MSToken is the stored Microsoft access credential for a user
type MSToken struct {
	UserID      string    `json:"user_id" db:"user_id"`
	AccessToken string    `json:"-" db:"access_token"`
	ExpiresOn   time.Time `json:"expires_on" db:"expires_on"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ValidAt reports whether the token is still usable at now.
// A token expiring exactly at now is already expired.
func (t *MSToken) ValidAt(now time.Time) bool {
	return t != nil && now.Before(t.ExpiresOn)
}

// InitAuthRequest is the body of POST /api/auth/init
type InitAuthRequest struct {
	UserID string `json:"userId"`
}

// AuthStatus is returned by both auth init and auth status
type AuthStatus struct {
	Authenticated   bool       `json:"authenticated"`
	DeviceCode      string     `json:"deviceCode,omitempty"`
	VerificationURL string     `json:"verificationUrl,omitempty"`
	ExpiresOn       *time.Time `json:"expiresOn,omitempty"`
}
