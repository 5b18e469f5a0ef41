package notify

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// newToken returns a fresh 32-byte random capability token, URL-safe
// base64 encoded without padding.
func newToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("notify: generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// newChallenge returns a fresh 32-byte random sign-in challenge, hex
// encoded for transport and signing.
func newChallenge() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("notify: generating challenge: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
