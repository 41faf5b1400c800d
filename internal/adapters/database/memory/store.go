// Package memory is a process-local credential store. It enforces the same
// email uniqueness rule as the Postgres schema and is meant for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
)

// Store holds users, refresh tokens and reset requests behind one mutex.
type Store struct {
	mu            sync.RWMutex
	usersByID     map[string]domain.User
	userIDByEmail map[string]string
	refreshTokens []domain.RefreshToken
	resets        []domain.PasswordReset
}

func NewStore() *Store {
	return &Store{
		usersByID:     map[string]domain.User{},
		userIDByEmail: map[string]string{},
	}
}

// NewRepositoryProvider exposes one Store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:          s,
		RefreshTokenRepo:  s,
		PasswordResetRepo: s,
	}
}

var (
	_ portsrepo.UserRepositoryFacade    = (*Store)(nil)
	_ portsrepo.RefreshTokenRepository  = (*Store)(nil)
	_ portsrepo.PasswordResetRepository = (*Store)(nil)
)

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.userIDByEmail[user.Email]; taken {
		return apperrors.ErrDuplicate
	}
	if _, taken := s.usersByID[user.UserID]; taken {
		return apperrors.ErrDuplicate
	}
	s.usersByID[user.UserID] = user
	s.userIDByEmail[user.Email] = user.UserID
	return nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userIDByEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	user := s.usersByID[id]
	return &user, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID string, passwordHash string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	s.usersByID[userID] = user
	return nil
}

func (s *Store) SaveRefreshToken(_ context.Context, token domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = append(s.refreshTokens, token)
	return nil
}

func (s *Store) HasActiveRefreshToken(_ context.Context, userID string, token string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.refreshTokens {
		t := &s.refreshTokens[i]
		if t.UserID == userID && t.Token == token && t.IsActive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteRefreshToken(_ context.Context, token string) error {
	s.deleteRefreshTokens(func(t domain.RefreshToken) bool { return t.Token == token })
	return nil
}

func (s *Store) DeleteRefreshTokensByUserID(_ context.Context, userID string) error {
	s.deleteRefreshTokens(func(t domain.RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (s *Store) deleteRefreshTokens(match func(domain.RefreshToken) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.refreshTokens[:0]
	for _, t := range s.refreshTokens {
		if !match(t) {
			kept = append(kept, t)
		}
	}
	s.refreshTokens = kept
}

func (s *Store) SavePasswordReset(_ context.Context, reset domain.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, reset)
	return nil
}

// FindPasswordResetByToken returns the newest unconsumed request carrying token.
func (s *Store) FindPasswordResetByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.resets) - 1; i >= 0; i-- {
		r := s.resets[i]
		if r.Token == token && r.ConsumedAt == nil {
			return &r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) MarkPasswordResetConsumed(_ context.Context, token string, consumedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.resets {
		if s.resets[i].Token == token && s.resets[i].ConsumedAt == nil {
			at := consumedAt
			s.resets[i].ConsumedAt = &at
		}
	}
	return nil
}
