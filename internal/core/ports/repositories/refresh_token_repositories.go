package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
)

// RefreshTokenRepository stores issued refresh tokens so they can be revoked server-side.
type RefreshTokenRepository interface {
	// SaveRefreshToken records a newly issued token.
	SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error

	// HasActiveRefreshToken reports whether a record for userID with exactly this token
	// exists and expires after now.
	HasActiveRefreshToken(ctx context.Context, userID string, token string, now time.Time) (bool, error)

	// DeleteRefreshToken removes every record matching token. Deleting nothing is not an error.
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteRefreshTokensByUserID removes every record owned by userID.
	DeleteRefreshTokensByUserID(ctx context.Context, userID string) error
}
