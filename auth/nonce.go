package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateNonce creates a random hex nonce (16 bytes, 32 hex characters)
// from a CSPRNG source.
func GenerateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
