package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
	"github.com/SscSPs/food_rescue_app/internal/models"
	"github.com/SscSPs/food_rescue_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxPasswordResetRepository struct {
	db DBTX
}

func newPgxPasswordResetRepository(db DBTX) *PgxPasswordResetRepository {
	return &PgxPasswordResetRepository{db: db}
}

var _ portsrepo.PasswordResetRepository = (*PgxPasswordResetRepository)(nil)

func (r *PgxPasswordResetRepository) SavePasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	m := mapping.ToModelPasswordReset(reset)
	query := `
		INSERT INTO password_resets (email, token, created_at)
		VALUES ($1, $2, $3);
	`
	if _, err := r.db.Exec(ctx, query, m.Email, m.Token, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save password reset: %w", err)
	}
	return nil
}

// FindPasswordResetByToken returns the newest unconsumed request carrying token.
func (r *PgxPasswordResetRepository) FindPasswordResetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	query := `
		SELECT id, email, token, created_at, consumed_at
		FROM password_resets
		WHERE token = $1 AND consumed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1;
	`
	var m models.PasswordReset
	err := r.db.QueryRow(ctx, query, token).Scan(&m.ID, &m.Email, &m.Token, &m.CreatedAt, &m.ConsumedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find password reset: %w", err)
	}
	reset := mapping.ToDomainPasswordReset(m)
	return &reset, nil
}

func (r *PgxPasswordResetRepository) MarkPasswordResetConsumed(ctx context.Context, token string, consumedAt time.Time) error {
	query := `
		UPDATE password_resets
		SET consumed_at = $2
		WHERE token = $1 AND consumed_at IS NULL;
	`
	if _, err := r.db.Exec(ctx, query, token, consumedAt); err != nil {
		return fmt.Errorf("failed to mark password reset consumed: %w", err)
	}
	return nil
}
