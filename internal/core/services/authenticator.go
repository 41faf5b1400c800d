package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
)

// authenticator resolves bearer access tokens into users.
type authenticator struct {
	BaseService
	tokens portssvc.TokenSvcFacade
	users  portssvc.UserReaderSvc
}

// NewAuthenticator creates the request authenticator used by the auth middleware.
func NewAuthenticator(tokens portssvc.TokenSvcFacade, users portssvc.UserReaderSvc) portssvc.AuthenticatorSvc {
	return &authenticator{tokens: tokens, users: users}
}

// Authenticate parses an "Authorization: Bearer <token>" header value.
// It returns apperrors.ErrAuthMalformed, ErrTokenExpired, ErrTokenInvalid or ErrUserNotFound.
func (a *authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*domain.User, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, apperrors.ErrAuthMalformed
	}

	userID, err := a.tokens.DecodeAccessToken(parts[1])
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.LogInfo(ctx, "Access token refers to unknown user", slog.String("user_id", userID))
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve authenticated user: %w", err)
	}
	return user, nil
}
