// Package sessionstore persists issued session records for audit and revocation.
package sessionstore

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session lookup finds no matching record.
var ErrSessionNotFound = errors.New("session not found")

// Session represents a persisted record of an issued session token.
type Session struct {
	ID        string
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Store defines the interface for session persistence.
type Store interface {
	CreateSession(ctx context.Context, sess *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// DeleteByUserID removes every session for a user and returns the number removed.
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
	// DeleteExpired removes sessions past their expiry and returns the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
