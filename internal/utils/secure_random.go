package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateResetToken returns a random string of length n drawn uniformly from [a-z0-9].
func GenerateResetToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	limit := big.NewInt(int64(len(resetTokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b[i] = resetTokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}
