package models

import "time"

// PasswordReset is the row shape of the password_resets table.
type PasswordReset struct {
	ID         int64      `db:"id"`
	Email      string     `db:"email"`
	Token      string     `db:"token"`
	CreatedAt  time.Time  `db:"created_at"`
	ConsumedAt *time.Time `db:"consumed_at"` // Nullable
}
