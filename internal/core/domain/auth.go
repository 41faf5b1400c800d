package domain

import "time"

// AuthProvider identifies where a user's identity was proven.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
	ProviderApple  AuthProvider = "APPLE"
)

// FederatedIdentity is the verified result of a third-party identity token.
type FederatedIdentity struct {
	Provider AuthProvider
	Subject  string
	Email    string
}

// TokenPair is what a successful login, registration or refresh hands back to the client.
type TokenPair struct {
	UserID           string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
