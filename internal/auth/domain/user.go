package domain

import "time"

type User struct {
	ID              string
	Username        string
	PreferredName   string
	PasswordHash    string     // argon2 encoded
	Role            string     // e.g. "member", "admin"
	TwoFactorOn     *time.Time // Timestamp when 2FA was enabled (nil = disabled)
	TwoFactorSecret *string    // TOTP secret (nullable, base32 encoded)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TwoFactorEnabled reports whether the user has completed 2FA enrollment.
// A stored secret alone is not enough; the user must have activated it.
func (u User) TwoFactorEnabled() bool {
	return u.TwoFactorOn != nil
}

// PublicUser is the externally visible projection of a User. Password hashes
// and TOTP secrets never leave the service.
type PublicUser struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	PreferredName    string `json:"preferred_name"`
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// Public returns the projection of u safe for API responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Username:         u.Username,
		PreferredName:    u.PreferredName,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled(),
	}
}
