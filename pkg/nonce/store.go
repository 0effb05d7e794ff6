// Package nonce holds short-lived, address-keyed login challenges.
//
// A challenge is single-use: it is issued before signing, looked up during
// verification, and consumed (deleted) the moment a signature is accepted so
// the same signature can never authenticate twice.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTTL is how long an issued challenge stays valid.
const DefaultTTL = 5 * time.Minute

// nonceSize is the number of random bytes in a challenge nonce.
const nonceSize = 32

// Challenge is an outstanding login challenge for a wallet address.
type Challenge struct {
	Address  string    `json:"address"`
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store holds at most one outstanding challenge per wallet address.
//
// Consume must be an atomic check-and-delete: when two verification requests
// race on the same address, exactly one observes the challenge as present.
type Store interface {
	// Issue creates a fresh challenge for address, replacing any prior one.
	Issue(ctx context.Context, address string) (Challenge, error)

	// Peek returns the live challenge for address, if any. Expired entries
	// are treated as absent.
	Peek(ctx context.Context, address string) (Challenge, bool, error)

	// Consume deletes the challenge for address and reports whether a live
	// one was present.
	Consume(ctx context.Context, address string) (bool, error)
}

// NewNonce generates a cryptographically random hex-encoded nonce.
func NewNonce() (string, error) {
	buf := make([]byte, nonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
