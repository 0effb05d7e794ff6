// Package session issues and verifies signed session tokens for authenticated
// accounts.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the default session token lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// RequestMetadata captures client details recorded alongside a session.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
}

// HashToken returns the hex-encoded SHA-256 digest of a session token.
// Only this digest is ever persisted.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
