package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenClaims is the payload of both access and refresh tokens.
// The two kinds differ only in signing secret and lifetime.
type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// tokenService implements the TokenSvcFacade for handling access and refresh JWTs.
type tokenService struct {
	cfg config.TokenConfig
	now func() time.Time
}

// TokenOption customizes a tokenService.
type TokenOption func(*tokenService)

// WithClock replaces time.Now, for tests that need to step past an expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg config.TokenConfig, opts ...TokenOption) (portssvc.TokenSvcFacade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid token config: %w", err)
	}
	s := &tokenService{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *tokenService) IssueAccessToken(userID string) (string, time.Time, error) {
	return s.issue(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *tokenService) IssueRefreshToken(userID string) (string, time.Time, error) {
	return s.issue(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *tokenService) issue(userID, secret string, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user ID is required to issue a token")
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) DecodeAccessToken(token string) (string, error) {
	userID, err := s.decode(token, s.cfg.AccessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrTokenInvalid
	}
	return userID, nil
}

func (s *tokenService) DecodeRefreshToken(token string) (string, error) {
	userID, err := s.decode(token, s.cfg.RefreshSecret)
	if err != nil {
		return "", apperrors.ErrUnauthenticated
	}
	return userID, nil
}

func (s *tokenService) decode(tokenString, secret string) (string, error) {
	claims := &tokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.UserID, nil
}
