package services

import (
	portsrepo "github.com/SscSPs/food_rescue_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// tracker may be nil.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, mailer portssvc.Mailer, tracker portssvc.EventTracker, googleOpts ...GoogleOption) (*portssvc.ServiceContainer, error) {
	container := &portssvc.ServiceContainer{}

	tokens, err := NewTokenService(cfg.Token)
	if err != nil {
		return nil, err
	}
	container.Token = tokens
	container.User = NewUserService(repos.UserRepo)
	container.Authenticator = NewAuthenticator(container.Token, container.User)

	sessionOpts := []SessionOption{}
	if tracker != nil {
		sessionOpts = append(sessionOpts, WithEventTracker(tracker))
	}
	container.Session = NewSessionService(repos, container.Token, mailer, SessionConfig{
		PasswordResetURLBase:  cfg.PasswordResetURLBase,
		RevokeSessionsOnReset: cfg.RevokeSessionsOnReset,
		ConsumeResetTokens:    cfg.ConsumeResetTokens,
	}, sessionOpts...)

	container.Google = NewGoogleOAuthHandlerService(cfg, googleOpts...)
	container.Apple = NewAppleVerifier(cfg.AppleKeysURL, cfg.AppleAudience, nil)

	return container, nil
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.TokenSvcFacade              = (*tokenService)(nil)
	_ portssvc.AuthenticatorSvc            = (*authenticator)(nil)
	_ portssvc.UserSvcFacade               = (*userService)(nil)
	_ portssvc.GoogleOAuthHandlerSvcFacade = (*googleOAuthHandlerService)(nil)
	_ portssvc.FederatedVerifier           = (*appleVerifier)(nil)
)
