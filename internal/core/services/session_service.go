package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenLength = 10

// Analytics event names.
const (
	EventUserRegistered = "user_registered"
	EventUserLoggedIn   = "user_logged_in"
	EventFederatedLogin = "federated_login"
)

// SessionConfig holds the session controller settings that come from configuration.
type SessionConfig struct {
	// PasswordResetURLBase is prefixed to the reset token to build the emailed link.
	PasswordResetURLBase string
	// RevokeSessionsOnReset deletes every refresh token of the user after a password reset.
	RevokeSessionsOnReset bool
	// ConsumeResetTokens marks a reset request consumed so its token cannot be replayed.
	ConsumeResetTokens bool
}

type sessionService struct {
	BaseService
	users         portsrepo.UserRepositoryFacade
	refreshTokens portsrepo.RefreshTokenRepository
	resets        portsrepo.PasswordResetRepository
	tokens        portssvc.TokenSvcFacade
	mailer        portssvc.Mailer
	tracker       portssvc.EventTracker
	cfg           SessionConfig
	now           func() time.Time
}

// SessionOption is a functional option for configuring the session service
type SessionOption func(*sessionService)

// WithSessionClock replaces time.Now for persisted timestamps and refresh record checks.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// WithEventTracker adds analytics for successful authentications.
func WithEventTracker(tracker portssvc.EventTracker) SessionOption {
	return func(s *sessionService) {
		s.tracker = tracker
	}
}

// NewSessionService creates the session controller.
func NewSessionService(repos portsrepo.RepositoryProvider, tokens portssvc.TokenSvcFacade, mailer portssvc.Mailer, cfg SessionConfig, options ...SessionOption) portssvc.SessionSvcFacade {
	svc := &sessionService{
		users:         repos.UserRepo,
		refreshTokens: repos.RefreshTokenRepo,
		resets:        repos.PasswordResetRepo,
		tokens:        tokens,
		mailer:        mailer,
		cfg:           cfg,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

func (s *sessionService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.TokenPair, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperrors.NewValidationError("password_confirm", "passwords do not match")
	}

	email := domain.NormalizeEmail(req.Email)
	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, emailTakenError()
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check for existing user during registration")
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := hashNewPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent registration for the same email.
			return nil, emailTakenError()
		}
		s.LogError(ctx, err, "Failed to save new user", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	pair, err := s.issuePair(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	s.track(user.UserID, EventUserRegistered, map[string]any{"provider": string(domain.ProviderLocal)})
	return pair, nil
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.FindUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user during login")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogWarn(ctx, "Password mismatch", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	s.track(user.UserID, EventUserLoggedIn, map[string]any{"provider": string(domain.ProviderLocal)})
	return pair, nil
}

// Refresh issues a new access token. The refresh token itself is not rotated.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	userID, err := s.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	active, err := s.refreshTokens.HasActiveRefreshToken(ctx, userID, refreshToken, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to look up refresh token", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if !active {
		s.LogInfo(ctx, "Refresh token not on record", slog.String("user_id", userID))
		return nil, apperrors.ErrUnauthenticated
	}

	access, accessExpiry, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &domain.TokenPair{
		UserID:          userID,
		AccessToken:     access,
		AccessExpiresAt: accessExpiry,
		RefreshToken:    refreshToken,
	}, nil
}

// Logout revokes the given refresh token. Unknown or empty tokens are not an error.
func (s *sessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
		s.LogError(ctx, err, "Failed to delete refresh token")
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// ForgotPassword records a reset request and mails the link. Whether the email
// belongs to a user is never checked, so callers cannot enumerate accounts.
func (s *sessionService) ForgotPassword(ctx context.Context, email string) error {
	token, err := utils.GenerateResetToken(resetTokenLength)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	email = domain.NormalizeEmail(email)
	reset := domain.PasswordReset{
		Email:     email,
		Token:     token,
		CreatedAt: s.now(),
	}
	if err := s.resets.SavePasswordReset(ctx, reset); err != nil {
		s.LogError(ctx, err, "Failed to save password reset request")
		return fmt.Errorf("failed to save password reset: %w", err)
	}

	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, email, s.cfg.PasswordResetURLBase+token); err != nil {
		s.LogError(ctx, err, "Failed to send password reset email")
	}
	return nil
}

func (s *sessionService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if req.Password != req.PasswordConfirm {
		return apperrors.NewValidationError("password_confirm", "passwords do not match")
	}

	reset, err := s.resets.FindPasswordResetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrInvalidLink
		}
		return fmt.Errorf("failed to find password reset: %w", err)
	}

	user, err := s.users.FindUserByEmail(ctx, reset.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user for password reset: %w", err)
	}

	hash, err := hashNewPassword(req.Password)
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.users.UpdatePassword(ctx, user.UserID, hash, now); err != nil {
		s.LogError(ctx, err, "Failed to update password", slog.String("user_id", user.UserID))
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.cfg.ConsumeResetTokens {
		if err := s.resets.MarkPasswordResetConsumed(ctx, reset.Token, now); err != nil {
			return fmt.Errorf("failed to consume password reset: %w", err)
		}
	}
	if s.cfg.RevokeSessionsOnReset {
		if err := s.refreshTokens.DeleteRefreshTokensByUserID(ctx, user.UserID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	s.LogInfo(ctx, "Password reset", slog.String("user_id", user.UserID))
	return nil
}

func (s *sessionService) FederatedLogin(ctx context.Context, identity domain.FederatedIdentity, providerToken string) (*domain.TokenPair, error) {
	email := domain.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.ErrInvalidProviderToken
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		user, err = s.createFederatedUser(ctx, email, providerToken)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve federated user", slog.String("provider", string(identity.Provider)))
		return nil, fmt.Errorf("failed to resolve federated user: %w", err)
	}

	pair, err := s.issuePair(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	s.track(user.UserID, EventFederatedLogin, map[string]any{"provider": string(identity.Provider)})
	return pair, nil
}

// createFederatedUser stores a user whose password hash is derived from the provider token.
// A concurrent creation for the same email is resolved by reading the winner back.
func (s *sessionService) createFederatedUser(ctx context.Context, email, providerToken string) (*domain.User, error) {
	hash, err := utils.HashProviderToken(providerToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash provider token: %w", err)
	}
	now := s.now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.users.FindUserByEmail(ctx, email)
		}
		return nil, err
	}
	s.LogInfo(ctx, "Federated user created", slog.String("user_id", user.UserID))
	return &user, nil
}

// issuePair issues an access and refresh token and records the refresh token.
func (s *sessionService) issuePair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	access, accessExpiry, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, refreshExpiry, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	record := domain.RefreshToken{
		UserID:    userID,
		Token:     refresh,
		ExpiresAt: refreshExpiry,
		CreatedAt: s.now(),
	}
	if err := s.refreshTokens.SaveRefreshToken(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to save refresh token", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &domain.TokenPair{
		UserID:           userID,
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (s *sessionService) track(userID, event string, props map[string]any) {
	if s.tracker == nil {
		return
	}
	s.tracker.Enqueue(userID, event, props)
}

// hashNewPassword hashes a user-chosen password. bcrypt only accepts 72 bytes of input,
// so a longer password is reported against the password field.
func hashNewPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func emailTakenError() error {
	return apperrors.NewValidationError("email", "a user with this email already exists")
}
