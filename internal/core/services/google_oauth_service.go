package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator matches idtoken.Validate.
type IDTokenValidator func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	clientID string
	validate IDTokenValidator
	// oauth2Config is configured at initialization time
	oauth2Config *oauth2.Config
}

// GoogleOption is a functional option for the Google verifier.
type GoogleOption func(*googleOAuthHandlerService)

// WithIDTokenValidator swaps the ID token check, mostly for tests that cannot reach Google's certs.
func WithIDTokenValidator(v IDTokenValidator) GoogleOption {
	return func(s *googleOAuthHandlerService) {
		s.validate = v
	}
}

// WithGoogleEndpoint overrides the OAuth2 token endpoint.
func WithGoogleEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(s *googleOAuthHandlerService) {
		s.oauth2Config.Endpoint = endpoint
	}
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config, opts ...GoogleOption) portssvc.GoogleOAuthHandlerSvcFacade {
	s := &googleOAuthHandlerService{
		clientID: cfg.GoogleClientID,
		validate: idtoken.Validate,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify validates a Google ID token against the configured client ID.
func (s *googleOAuthHandlerService) Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error) {
	if s.clientID == "" {
		return nil, fmt.Errorf("%w: google client ID is not configured", apperrors.ErrProviderUnavailable)
	}

	payload, err := s.validate(ctx, token, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrInvalidProviderToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: email claim missing", apperrors.ErrInvalidProviderToken)
	}

	return &domain.FederatedIdentity{
		Provider: domain.ProviderGoogle,
		Subject:  payload.Subject,
		Email:    email,
	}, nil
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
// A code Google refuses yields ErrInvalidProviderToken; transport failures yield ErrProviderUnavailable.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
			return nil, fmt.Errorf("%w: google rejected authorization code: %v", apperrors.ErrInvalidProviderToken, err)
		}
		return nil, fmt.Errorf("%w: failed to exchange oauth code for token: %v", apperrors.ErrProviderUnavailable, err)
	}
	return token, nil
}
