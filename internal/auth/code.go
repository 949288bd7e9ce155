package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeSpace = 1_000_000

// GenerateCode returns a uniformly random 6-digit code, zero padded ("000123")
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
