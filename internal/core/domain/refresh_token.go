package domain

import "time"

// RefreshToken is a persisted record of an issued refresh token.
// Deleting the record revokes the token even while its signature is still valid.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsActive reports whether the record still authorizes a refresh at now.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.ExpiresAt.After(now)
}
