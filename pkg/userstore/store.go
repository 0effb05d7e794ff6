package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/lancehub/wallet-sso/pkg/user"
)

// ErrAccountNotFound is returned when an account lookup finds no matching record.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateAccount is returned when an insert collides with an existing
// wallet address or email.
var ErrDuplicateAccount = errors.New("account already exists")

// Store defines the interface for account persistence.
type Store interface {
	// CreateAccount inserts the account and fills in its generated ID and
	// timestamps. Returns ErrDuplicateAccount on a unique-constraint collision.
	CreateAccount(ctx context.Context, acct *user.Account) error
	GetAccount(ctx context.Context, opts ...QueryOption) (*user.Account, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// QueryOptions defines options for querying accounts
type QueryOptions struct {
	ID            *int64
	WalletAddress *string
	Email         *string
}

// QueryOption is a functional option for querying accounts
type QueryOption func(*QueryOptions)

// WithID sets the account ID filter
func WithID(id int64) QueryOption {
	return func(opts *QueryOptions) {
		opts.ID = &id
	}
}

// WithWalletAddress sets the wallet address filter
func WithWalletAddress(walletAddress string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WalletAddress = &walletAddress
	}
}

// WithEmail sets the email filter
func WithEmail(email string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Email = &email
	}
}
