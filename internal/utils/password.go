package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashProviderToken produces the placeholder password hash for accounts created through
// a federated login. Identity tokens exceed bcrypt's 72 byte input limit, so the token
// is reduced with SHA-256 first.
func HashProviderToken(token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	return HashPassword(hex.EncodeToString(sum[:]))
}
