package walletauth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/pkg/session"
	"github.com/lancehub/wallet-sso/pkg/user"
)

const serviceName = "WalletAuthService"

const (
	logMessageMaxLen     = 50
	signatureDisplaySize = 16
)

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the wallet auth Service.
// It logs method entry/exit, duration, errors, and sanitized request/response data.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// RequestChallenge wraps the service method with logging
func (ls *logService) RequestChallenge(ctx context.Context, address string) (resp *ChallengeResponse, err error) {
	start := time.Now()

	ls.logger.Info("RequestChallenge started",
		zap.String("service", serviceName),
		zap.String("method", "RequestChallenge"),
		zap.String("address", address),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("RequestChallenge failed",
				zap.String("service", serviceName),
				zap.String("method", "RequestChallenge"),
				zap.String("address", address),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("RequestChallenge completed",
				zap.String("service", serviceName),
				zap.String("method", "RequestChallenge"),
				zap.String("address", address),
				zap.String("nonce", truncateString(resp.Nonce, logMessageMaxLen)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.RequestChallenge(ctx, address)
}

// VerifyAndLogin wraps the service method with logging
func (ls *logService) VerifyAndLogin(ctx context.Context, req *LoginRequest, meta session.RequestMetadata) (result *LoginResult, err error) {
	start := time.Now()

	ls.logger.Info("VerifyAndLogin started",
		zap.String("service", serviceName),
		zap.String("method", "VerifyAndLogin"),
		zap.String("address", req.Address),
		zap.String("message", truncateString(req.Message, logMessageMaxLen)),
		zap.String("signature", redactSignature(req.Signature)),
		zap.String("user_type", req.UserType),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("VerifyAndLogin failed",
				zap.String("service", serviceName),
				zap.String("method", "VerifyAndLogin"),
				zap.String("address", req.Address),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("VerifyAndLogin completed",
				zap.String("service", serviceName),
				zap.String("method", "VerifyAndLogin"),
				zap.String("address", req.Address),
				zap.Int64("user_id", result.Account.ID),
				zap.Bool("is_new_user", result.IsNewUser),
				zap.String("session_id", result.Session.ID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.VerifyAndLogin(ctx, req, meta)
}

// CurrentUser wraps the service method with logging
func (ls *logService) CurrentUser(ctx context.Context, token string) (acct *user.Account, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Warn("CurrentUser failed",
				zap.String("service", serviceName),
				zap.String("method", "CurrentUser"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("CurrentUser completed",
				zap.String("service", serviceName),
				zap.String("method", "CurrentUser"),
				zap.Int64("user_id", acct.ID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.CurrentUser(ctx, token)
}

// Logout wraps the service method with logging
func (ls *logService) Logout(ctx context.Context, token string) (err error) {
	start := time.Now()

	ls.logger.Info("Logout started",
		zap.String("service", serviceName),
		zap.String("method", "Logout"),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Logout failed",
				zap.String("service", serviceName),
				zap.String("method", "Logout"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Logout completed",
				zap.String("service", serviceName),
				zap.String("method", "Logout"),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Logout(ctx, token)
}

// Helper functions for sensitive data redaction

// truncateString limits string length for logging to prevent log spam
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// redactSignature redacts signature data to show only metadata
// Signatures are sensitive and should not be logged in full
func redactSignature(sig string) string {
	if sig == "" {
		return "<empty>"
	}
	sigLen := len(sig)
	if sigLen > signatureDisplaySize {
		// Show first 8 and last 4 characters with length
		return fmt.Sprintf("%s...%s (%d bytes)", sig[:8], sig[sigLen-4:], sigLen)
	}
	// For very short signatures, just show length
	return fmt.Sprintf("<%d bytes>", sigLen)
}
