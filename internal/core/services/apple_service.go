package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/golang-jwt/jwt/v5"
)

// AppleIssuer is the iss claim of every Apple identity token.
const AppleIssuer = "https://appleid.apple.com"

const maxJWKSBytes = 1 << 20

type appleClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// appleVerifier checks Apple identity tokens against Apple's published signing keys.
type appleVerifier struct {
	keysURL  string
	audience string
	client   *http.Client
}

// NewAppleVerifier creates a verifier that fetches the key set from keysURL on every call.
func NewAppleVerifier(keysURL, audience string, client *http.Client) portssvc.FederatedVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &appleVerifier{keysURL: keysURL, audience: audience, client: client}
}

func (v *appleVerifier) Verify(ctx context.Context, token string) (*domain.FederatedIdentity, error) {
	raw, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	keys, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed apple key set: %v", apperrors.ErrProviderUnavailable, err)
	}

	claims := &appleClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if kid, _ := t.Header["kid"].(string); kid == "" {
			return nil, fmt.Errorf("token has no key id")
		}
		return keys.Keyfunc(t)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(AppleIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: apple token verification failed: %v", apperrors.ErrInvalidProviderToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: email claim missing", apperrors.ErrInvalidProviderToken)
	}

	return &domain.FederatedIdentity{
		Provider: domain.ProviderApple,
		Subject:  claims.Subject,
		Email:    claims.Email,
	}, nil
}

func (v *appleVerifier) fetchKeys(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.keysURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build apple keys request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch apple keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apple keys endpoint returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read apple keys: %w", err)
	}
	return body, nil
}
