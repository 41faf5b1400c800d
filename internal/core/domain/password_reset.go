package domain

import "time"

// PasswordReset is a forgot-password request keyed by its opaque token.
type PasswordReset struct {
	Email      string
	Token      string
	CreatedAt  time.Time
	ConsumedAt *time.Time
}
