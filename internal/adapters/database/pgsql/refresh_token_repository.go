package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
	"github.com/SscSPs/food_rescue_app/internal/utils/mapping"
)

type PgxRefreshTokenRepository struct {
	db DBTX
}

func newPgxRefreshTokenRepository(db DBTX) *PgxRefreshTokenRepository {
	return &PgxRefreshTokenRepository{db: db}
}

var _ portsrepo.RefreshTokenRepository = (*PgxRefreshTokenRepository)(nil)

func (r *PgxRefreshTokenRepository) SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	m := mapping.ToModelRefreshToken(token)
	query := `
		INSERT INTO refresh_tokens (user_id, token, expired_at, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := r.db.Exec(ctx, query, m.UserID, m.Token, m.ExpiredAt, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *PgxRefreshTokenRepository) HasActiveRefreshToken(ctx context.Context, userID string, token string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expired_at > $3
		);
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, token, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return exists, nil
}

func (r *PgxRefreshTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1;`, token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *PgxRefreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens for user %s: %w", userID, err)
	}
	return nil
}
