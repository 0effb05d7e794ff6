package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/internal/metrics"
	"github.com/lancehub/wallet-sso/pkg/sessionstore"
	"github.com/lancehub/wallet-sso/pkg/user"
)

// ErrInvalidToken is returned when a token fails signature or claims validation.
var ErrInvalidToken = errors.New("invalid session token")

// Issuer signs session tokens and records them for audit and revocation.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	sessions sessionstore.Store
	logger   *zap.Logger
	now      func() time.Time
}

// IssuedSession pairs a signed token with its persisted record.
type IssuedSession struct {
	Token   string
	Session *sessionstore.Session
}

// NewIssuer creates a session issuer signing with the given HMAC secret.
func NewIssuer(secret []byte, ttl time.Duration, sessions sessionstore.Store, logger *zap.Logger) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret:   secret,
		ttl:      ttl,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue signs a session token for the account and records it.
//
// A failure to persist the audit record does not fail the login: the token is
// already valid on its own signature, so the error is logged and counted
// instead of surfaced.
func (i *Issuer) Issue(ctx context.Context, acct *user.Account, meta RequestMetadata) (*IssuedSession, error) {
	now := i.now()
	jti := uuid.NewString()
	expiresAt := now.Add(i.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(acct.ID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:    acct.Email,
		UserType: string(acct.UserType),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	sess := &sessionstore.Session{
		ID:        jti,
		UserID:    acct.ID,
		TokenHash: HashToken(token),
		ExpiresAt: expiresAt,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	if err := i.sessions.CreateSession(ctx, sess); err != nil {
		metrics.SessionPersistFailures.Inc()
		i.logger.Error("failed to persist session record",
			zap.Int64("user_id", acct.ID),
			zap.String("session_id", jti),
			zap.Error(err),
		)
	}

	return &IssuedSession{Token: token, Session: sess}, nil
}

// Verify validates a token's signature and expiry and returns its claims.
// Validation is purely cryptographic; revoked-but-unexpired tokens stay valid
// until expiry.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserID extracts the numeric account ID from validated claims.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject claim", ErrInvalidToken)
	}
	return id, nil
}

// Revoke deletes the persisted record for a single token.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	err := i.sessions.DeleteByTokenHash(ctx, HashToken(token))
	if err != nil && !errors.Is(err, sessionstore.ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAll deletes every persisted session for a user.
func (i *Issuer) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	removed, err := i.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return removed, nil
}
