package oidc

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// GenerateState creates a cryptographically secure random state string
// for CSRF protection in the authorization redirect.
// Returns a 32-byte hex-encoded string (64 characters).
func GenerateState() (string, error) {
	return randomHex(32)
}

// GenerateNonce creates a cryptographically secure random nonce for
// replay protection. Returns a 16-byte hex-encoded string (32 characters).
func GenerateNonce() (string, error) {
	return randomHex(16)
}

// GenerateCSRFToken creates the random token bound into locally issued
// refresh tokens. Returns a 32-byte hex-encoded string (64 characters).
func GenerateCSRFToken() (string, error) {
	return randomHex(32)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
