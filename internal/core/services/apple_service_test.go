package services_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	"github.com/SscSPs/food_rescue_app/internal/core/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppleKID      = "apple-test-key"
	testAppleAudience = "host.exp.Exponent"
)

func appleJWKS(t *testing.T, key *rsa.PublicKey, kid string) []byte {
	t.Helper()
	jwks := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	raw, err := json.Marshal(jwks)
	require.NoError(t, err)
	return raw
}

func signAppleToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func appleClaims(overrides map[string]any) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":   services.AppleIssuer,
		"aud":   testAppleAudience,
		"sub":   "apple-user-1",
		"email": "a@privaterelay.appleid.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	return claims
}

func TestAppleVerifier_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := appleJWKS(t, &key.PublicKey, testAppleKID)
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwks)
	}))
	defer srv.Close()

	verifier := services.NewAppleVerifier(srv.URL, testAppleAudience, srv.Client())

	t.Run("valid token", func(t *testing.T) {
		token := signAppleToken(t, key, testAppleKID, appleClaims(nil))
		identity, err := verifier.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, domain.FederatedIdentity{
			Provider: domain.ProviderApple,
			Subject:  "apple-user-1",
			Email:    "a@privaterelay.appleid.com",
		}, *identity)
	})

	hs256 := jwt.NewWithClaims(jwt.SigningMethodHS256, appleClaims(nil))
	hs256.Header["kid"] = testAppleKID
	hs256Token, err := hs256.SignedString([]byte("not-an-rsa-key"))
	require.NoError(t, err)

	rejected := []struct {
		name  string
		token string
	}{
		{name: "unknown kid", token: signAppleToken(t, key, "rotated-away", appleClaims(nil))},
		{name: "missing kid", token: signAppleToken(t, key, "", appleClaims(nil))},
		{name: "wrong audience", token: signAppleToken(t, key, testAppleKID, appleClaims(map[string]any{"aud": "com.example.other"}))},
		{name: "wrong issuer", token: signAppleToken(t, key, testAppleKID, appleClaims(map[string]any{"iss": "https://evil.example"}))},
		{name: "expired", token: signAppleToken(t, key, testAppleKID, appleClaims(map[string]any{"exp": time.Now().Add(-time.Minute).Unix()}))},
		{name: "missing email", token: signAppleToken(t, key, testAppleKID, appleClaims(map[string]any{"email": nil}))},
		{name: "signed by another key", token: signAppleToken(t, otherKey, testAppleKID, appleClaims(nil))},
		{name: "hmac", token: hs256Token},
		{name: "garbage", token: "garbage"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, apperrors.ErrInvalidProviderToken)
		})
	}

	assert.Equal(t, int32(len(rejected)+1), fetches.Load(), "keys are fetched on every verification")
}

func TestAppleVerifier_ProviderUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed key set",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			verifier := services.NewAppleVerifier(srv.URL, testAppleAudience, srv.Client())
			_, err := verifier.Verify(context.Background(), "any.token.value")
			assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
			assert.NotErrorIs(t, err, apperrors.ErrInvalidProviderToken)
		})
	}
}
