package domain

import (
	"strings"
	"time"
)

// User represents an account holder of the marketplace.
type User struct {
	UserID       string    `json:"userID"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) GetUserID() string       { return u.UserID }
func (u *User) GetEmail() string        { return u.Email }
func (u *User) GetCreatedAt() time.Time { return u.CreatedAt }

// NormalizeEmail trims and lowercases an address so lookups and the uniqueness constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
