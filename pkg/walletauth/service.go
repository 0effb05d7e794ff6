// Package walletauth orchestrates the two-phase wallet login handshake:
// challenge issuance, then signature verification and session issuance.
package walletauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/internal/metrics"
	apperrors "github.com/lancehub/wallet-sso/pkg/app/errors"
	"github.com/lancehub/wallet-sso/pkg/auth"
	"github.com/lancehub/wallet-sso/pkg/nonce"
	"github.com/lancehub/wallet-sso/pkg/session"
	"github.com/lancehub/wallet-sso/pkg/sessionstore"
	"github.com/lancehub/wallet-sso/pkg/user"
	"github.com/lancehub/wallet-sso/pkg/userstore"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrNoChallenge       = errors.New("no login challenge found for address")
	ErrChallengeExpired  = errors.New("login challenge expired")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrSignatureMismatch = errors.New("signature does not match address")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrSessionRevoked    = errors.New("session not found or revoked")
)

var requestValidator = validator.New()

// ChallengeResponse is the payload returned for a challenge request.
type ChallengeResponse struct {
	Message string `json:"message"`
	Nonce   string `json:"nonce"`
}

// LoginRequest carries a signed challenge submitted for verification.
type LoginRequest struct {
	Address   string `json:"address" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	Message   string `json:"message" validate:"required"`
	UserType  string `json:"user_type"`
}

// LoginResult is the outcome of a successful verification.
type LoginResult struct {
	IsNewUser bool
	Account   *user.Account
	Token     string
	Session   *sessionstore.Session
}

// Service defines the wallet authentication business logic
type Service interface {
	RequestChallenge(ctx context.Context, address string) (*ChallengeResponse, error)
	VerifyAndLogin(ctx context.Context, req *LoginRequest, meta session.RequestMetadata) (*LoginResult, error)
	CurrentUser(ctx context.Context, token string) (*user.Account, error)
	Logout(ctx context.Context, token string) error
}

// Resolver maps a verified wallet address onto an account.
type Resolver interface {
	Resolve(ctx context.Context, walletAddress string, userType user.Type) (*user.Account, bool, error)
}

// Issuer signs and verifies session tokens.
type Issuer interface {
	Issue(ctx context.Context, acct *user.Account, meta session.RequestMetadata) (*session.IssuedSession, error)
	Verify(token string) (*session.Claims, error)
	RevokeAll(ctx context.Context, userID int64) (int64, error)
}

type walletAuthService struct {
	nonces   nonce.Store
	resolver Resolver
	issuer   Issuer
	accounts userstore.Store
	sessions sessionstore.Store
	appName  string
	domain   string
	nonceTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new wallet authentication service
func NewService(
	nonces nonce.Store,
	resolver Resolver,
	issuer Issuer,
	accounts userstore.Store,
	sessions sessionstore.Store,
	appName string,
	domain string,
	nonceTTL time.Duration,
	logger *zap.Logger,
) Service {
	if nonceTTL <= 0 {
		nonceTTL = nonce.DefaultTTL
	}
	return &walletAuthService{
		nonces:   nonces,
		resolver: resolver,
		issuer:   issuer,
		accounts: accounts,
		sessions: sessions,
		appName:  appName,
		domain:   domain,
		nonceTTL: nonceTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestChallenge issues a fresh login challenge for the address and returns
// the message the wallet must sign. A new request replaces any prior
// outstanding challenge for the same address.
func (s *walletAuthService) RequestChallenge(ctx context.Context, address string) (*ChallengeResponse, error) {
	if address == "" {
		return nil, apperrors.BadRequestError(ErrMissingField, "address is required")
	}
	if !auth.ValidWalletAddress(address) {
		return nil, apperrors.BadRequestError(ErrInvalidAddress, "invalid wallet address")
	}
	address = auth.NormalizeAddress(address)

	ch, err := s.nonces.Issue(ctx, address)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to issue challenge: %w", err))
	}

	metrics.ChallengesIssued.Inc()

	return &ChallengeResponse{
		Message: BuildSignMessage(s.appName, s.domain, ch.Nonce, ch.IssuedAt),
		Nonce:   ch.Nonce,
	}, nil
}

// VerifyAndLogin verifies a signed challenge and logs the wallet in,
// provisioning an account on first login.
//
// The challenge is consumed strictly before any account or session side
// effect, so a crash mid-login can never leave a replayable signature behind.
func (s *walletAuthService) VerifyAndLogin(ctx context.Context, req *LoginRequest, meta session.RequestMetadata) (result *LoginResult, err error) {
	start := s.now()
	defer func() {
		metrics.LoginDuration.Observe(time.Since(start).Seconds())
		metrics.Logins.WithLabelValues(loginOutcome(err)).Inc()
	}()

	if err := requestValidator.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(ErrMissingField, "address, signature and message are required")
	}
	if !auth.ValidWalletAddress(req.Address) {
		return nil, apperrors.BadRequestError(ErrInvalidAddress, "invalid wallet address")
	}
	address := auth.NormalizeAddress(req.Address)

	ch, ok, err := s.nonces.Peek(ctx, address)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to read challenge: %w", err))
	}
	if !ok {
		return nil, apperrors.BadRequestError(ErrNoChallenge, "no login challenge found, request a new one")
	}

	if s.now().Sub(ch.IssuedAt) > s.nonceTTL {
		// Expired entries are also dropped here so the client's next request
		// starts clean.
		if _, cErr := s.nonces.Consume(ctx, address); cErr != nil {
			s.logger.Warn("failed to drop expired challenge", zap.String("wallet_address", address), zap.Error(cErr))
		}
		return nil, apperrors.BadRequestError(ErrChallengeExpired, "login challenge expired, request a new one")
	}

	// The submitted message must embed the live challenge's nonce; a stale
	// message signed against a superseded challenge is rejected here.
	if !strings.Contains(req.Message, ch.Nonce) {
		return nil, apperrors.BadRequestError(ErrNoChallenge, "message does not match the outstanding challenge")
	}

	recovered, err := auth.RecoverAddress(req.Message, req.Signature)
	if err != nil {
		return nil, apperrors.UnAuthorizedError(ErrInvalidSignature, "invalid signature")
	}
	if auth.NormalizeAddress(recovered.Hex()) != address {
		return nil, apperrors.UnAuthorizedError(ErrSignatureMismatch, "signature does not match address")
	}

	// Atomic check-and-delete: of two racing requests, exactly one proceeds.
	consumed, err := s.nonces.Consume(ctx, address)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to consume challenge: %w", err))
	}
	if !consumed {
		return nil, apperrors.BadRequestError(ErrNoChallenge, "no login challenge found, request a new one")
	}

	acct, created, err := s.resolver.Resolve(ctx, address, user.NormalizeType(req.UserType))
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to resolve account: %w", err))
	}

	if !acct.IsActive {
		return nil, apperrors.ForbiddenError(ErrAccountDisabled, "account is disabled")
	}

	issued, err := s.issuer.Issue(ctx, acct, meta)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to issue session: %w", err))
	}

	if err := s.accounts.TouchLastLogin(ctx, acct.ID, s.now()); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("user_id", acct.ID), zap.Error(err))
	}

	return &LoginResult{
		IsNewUser: created,
		Account:   acct,
		Token:     issued.Token,
		Session:   issued.Session,
	}, nil
}

// CurrentUser resolves a session token to its active account. The token must
// validate cryptographically and still have a live session record.
func (s *walletAuthService) CurrentUser(ctx context.Context, token string) (*user.Account, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, apperrors.UnAuthorizedError(session.ErrInvalidToken, "invalid or expired session")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.UnAuthorizedError(session.ErrInvalidToken, "invalid or expired session")
	}

	if _, err := s.sessions.GetByTokenHash(ctx, session.HashToken(token)); err != nil {
		if errors.Is(err, sessionstore.ErrSessionNotFound) {
			return nil, apperrors.UnAuthorizedError(ErrSessionRevoked, "session not found or revoked")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to look up session: %w", err))
	}

	acct, err := s.accounts.GetAccount(ctx, userstore.WithID(userID))
	if err != nil {
		if errors.Is(err, userstore.ErrAccountNotFound) {
			return nil, apperrors.UnAuthorizedError(session.ErrInvalidToken, "invalid or expired session")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to look up account: %w", err))
	}
	if !acct.IsActive {
		return nil, apperrors.ForbiddenError(ErrAccountDisabled, "account is disabled")
	}

	return acct, nil
}

// Logout revokes every session belonging to the token's account.
func (s *walletAuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return apperrors.UnAuthorizedError(session.ErrInvalidToken, "invalid or expired session")
	}
	userID, err := claims.UserID()
	if err != nil {
		return apperrors.UnAuthorizedError(session.ErrInvalidToken, "invalid or expired session")
	}

	removed, err := s.issuer.RevokeAll(ctx, userID)
	if err != nil {
		return apperrors.GeneralError(fmt.Errorf("failed to revoke sessions: %w", err))
	}

	s.logger.Info("user logged out", zap.Int64("user_id", userID), zap.Int64("sessions_removed", removed))
	return nil
}

// loginOutcome maps a VerifyAndLogin error to a metrics label.
func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidSignature):
		return metrics.OutcomeInvalidSignature
	case errors.Is(err, ErrSignatureMismatch):
		return metrics.OutcomeSignatureMismatch
	case errors.Is(err, ErrChallengeExpired):
		return metrics.OutcomeChallengeExpired
	case errors.Is(err, ErrNoChallenge), errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidAddress):
		return metrics.OutcomeNoChallenge
	case errors.Is(err, ErrAccountDisabled):
		return metrics.OutcomeAccountDisabled
	default:
		return metrics.OutcomeError
	}
}
