package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, updatedAt time.Time) error {
	args := m.Called(ctx, userID, passwordHash, updatedAt)
	return args.Error(0)
}

// --- Mock RefreshTokenRepository ---
type MockRefreshTokenRepository struct {
	mock.Mock
}

var _ portsrepo.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

func (m *MockRefreshTokenRepository) SaveRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) HasActiveRefreshToken(ctx context.Context, userID string, token string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, token, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock PasswordResetRepository ---
type MockPasswordResetRepository struct {
	mock.Mock
}

var _ portsrepo.PasswordResetRepository = (*MockPasswordResetRepository)(nil)

func (m *MockPasswordResetRepository) SavePasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) FindPasswordResetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, token)
	var reset *domain.PasswordReset
	if args.Get(0) != nil {
		reset = args.Get(0).(*domain.PasswordReset)
	}
	return reset, args.Error(1)
}

func (m *MockPasswordResetRepository) MarkPasswordResetConsumed(ctx context.Context, token string, consumedAt time.Time) error {
	args := m.Called(ctx, token, consumedAt)
	return args.Error(0)
}

// --- Mock Mailer ---
type MockMailer struct {
	mock.Mock
}

var _ portssvc.Mailer = (*MockMailer)(nil)

func (m *MockMailer) SendPasswordReset(ctx context.Context, email string, resetURL string) error {
	args := m.Called(ctx, email, resetURL)
	return args.Error(0)
}

// recordingTracker keeps every enqueued event name.
type recordingTracker struct {
	mu     sync.Mutex
	events []string
}

var _ portssvc.EventTracker = (*recordingTracker)(nil)

func (r *recordingTracker) Enqueue(distinctID string, event string, properties map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTracker) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
