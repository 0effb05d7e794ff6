// Package account provisions marketplace accounts for verified wallets.
package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/internal/metrics"
	"github.com/lancehub/wallet-sso/pkg/user"
	"github.com/lancehub/wallet-sso/pkg/userstore"
)

// Store is the narrow data-access interface for the account resolver.
// Defined here to keep resolution decoupled from userstore implementation details.
type Store interface {
	CreateAccount(ctx context.Context, acct *user.Account) error
	GetAccount(ctx context.Context, opts ...userstore.QueryOption) (*user.Account, error)
}

// Resolver maps a verified wallet address onto an account, provisioning one
// on first login.
type Resolver struct {
	store  Store
	logger *zap.Logger
}

// NewResolver creates a new account resolver
func NewResolver(store Store, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// Resolve returns the account owning walletAddress, creating one if none
// exists. The returned bool reports whether an account was created by this
// call. walletAddress must already be normalized.
//
// Two concurrent first logins can both observe the account as missing; the
// database unique constraint picks the winner and the loser falls back to a
// lookup, so both callers converge on the same account.
func (r *Resolver) Resolve(ctx context.Context, walletAddress string, userType user.Type) (*user.Account, bool, error) {
	acct, err := r.store.GetAccount(ctx, userstore.WithWalletAddress(walletAddress))
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, userstore.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("failed to look up account: %w", err)
	}

	acct = user.NewWalletAccount(walletAddress, userType)
	err = r.store.CreateAccount(ctx, acct)
	if err == nil {
		metrics.AccountsProvisioned.Inc()
		r.logger.Info("provisioned account for wallet",
			zap.String("wallet_address", walletAddress),
			zap.String("user_type", string(userType)),
			zap.Int64("user_id", acct.ID),
		)
		return acct, true, nil
	}

	if errors.Is(err, userstore.ErrDuplicateAccount) {
		// Lost the race to a concurrent first login; the winner's row is there now.
		acct, err = r.store.GetAccount(ctx, userstore.WithWalletAddress(walletAddress))
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up account after insert conflict: %w", err)
		}
		return acct, false, nil
	}

	return nil, false, fmt.Errorf("failed to provision account: %w", err)
}
