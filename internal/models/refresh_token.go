package models

import "time"

// RefreshToken is the row shape of the refresh_tokens table.
type RefreshToken struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	ExpiredAt time.Time `db:"expired_at"`
	CreatedAt time.Time `db:"created_at"`
}
