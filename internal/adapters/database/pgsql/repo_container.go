package pgsql

import (
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every Postgres repository onto one pool.
func NewRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:          newPgxUserRepository(db),
		RefreshTokenRepo:  newPgxRefreshTokenRepository(db),
		PasswordResetRepo: newPgxPasswordResetRepository(db),
	}
}
