package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
)

// PasswordResetRepository stores forgot-password requests.
type PasswordResetRepository interface {
	SavePasswordReset(ctx context.Context, reset domain.PasswordReset) error

	// FindPasswordResetByToken returns the unconsumed request for token or apperrors.ErrNotFound.
	FindPasswordResetByToken(ctx context.Context, token string) (*domain.PasswordReset, error)

	MarkPasswordResetConsumed(ctx context.Context, token string, consumedAt time.Time) error
}
