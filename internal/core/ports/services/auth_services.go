package services

import (
	"context"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"golang.org/x/oauth2"
)

// TokenSvcFacade issues and decodes the signed access and refresh tokens.
type TokenSvcFacade interface {
	IssueAccessToken(userID string) (string, time.Time, error)
	IssueRefreshToken(userID string) (string, time.Time, error)
	// DecodeAccessToken returns apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid on failure.
	DecodeAccessToken(token string) (string, error)
	// DecodeRefreshToken returns apperrors.ErrUnauthenticated on any failure.
	DecodeRefreshToken(token string) (string, error)
}

// AuthenticatorSvc resolves an Authorization header into a user. It never touches refresh tokens.
type AuthenticatorSvc interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*domain.User, error)
}

// SessionSvcFacade orchestrates the credential and session lifecycle.
type SessionSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	// FederatedLogin treats a verified identity as proof equivalent to a password check.
	FederatedLogin(ctx context.Context, identity domain.FederatedIdentity, providerToken string) (*domain.TokenPair, error)
}

// FederatedVerifier validates a third-party identity token.
// Implementations return apperrors.ErrInvalidProviderToken or apperrors.ErrProviderUnavailable.
type FederatedVerifier interface {
	Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	FederatedVerifier
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
}
