package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/pkg/user"
	"github.com/lancehub/wallet-sso/pkg/userstore"
)

const testWallet = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

// fakeStore is an in-memory Store with scriptable failures.
type fakeStore struct {
	accounts  map[string]*user.Account
	nextID    int64
	getErr    error
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*user.Account)}
}

func (f *fakeStore) GetAccount(_ context.Context, opts ...userstore.QueryOption) (*user.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	options := &userstore.QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.WalletAddress != nil {
		if acct, ok := f.accounts[*options.WalletAddress]; ok {
			return acct, nil
		}
	}
	return nil, userstore.ErrAccountNotFound
}

func (f *fakeStore) CreateAccount(_ context.Context, acct *user.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.accounts[acct.WalletAddress]; ok {
		return userstore.ErrDuplicateAccount
	}
	f.nextID++
	acct.ID = f.nextID
	f.accounts[acct.WalletAddress] = acct
	return nil
}

func TestResolver_ProvisionsOnFirstLogin(t *testing.T) {
	store := newFakeStore()
	resolver := NewResolver(store, zap.NewNop())

	acct, created, err := resolver.Resolve(context.Background(), testWallet, user.TypeClient)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, testWallet, acct.WalletAddress)
	assert.Equal(t, user.TypeClient, acct.UserType)
	assert.True(t, acct.IsWalletOnly())
	assert.True(t, acct.IsActive)
	assert.NotZero(t, acct.ID)
}

func TestResolver_ReturnsExistingAccount(t *testing.T) {
	store := newFakeStore()
	resolver := NewResolver(store, zap.NewNop())

	first, created, err := resolver.Resolve(context.Background(), testWallet, user.TypeFreelancer)
	require.NoError(t, err)
	require.True(t, created)

	// Requested type on a repeat login is ignored; the stored account wins.
	second, created, err := resolver.Resolve(context.Background(), testWallet, user.TypeAdmin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, user.TypeFreelancer, second.UserType)
}

// racingStore simulates losing a provisioning race: the first lookup misses,
// the insert hits the unique constraint, and the retry lookup finds the
// winner's row.
type racingStore struct {
	winner *user.Account
	gets   int
}

func (r *racingStore) GetAccount(_ context.Context, _ ...userstore.QueryOption) (*user.Account, error) {
	r.gets++
	if r.gets == 1 {
		return nil, userstore.ErrAccountNotFound
	}
	return r.winner, nil
}

func (r *racingStore) CreateAccount(_ context.Context, _ *user.Account) error {
	return userstore.ErrDuplicateAccount
}

func TestResolver_InsertConflictFallsBackToLookup(t *testing.T) {
	winner := user.NewWalletAccount(testWallet, user.TypeFreelancer)
	winner.ID = 99
	resolver := NewResolver(&racingStore{winner: winner}, zap.NewNop())

	acct, created, err := resolver.Resolve(context.Background(), testWallet, user.TypeFreelancer)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(99), acct.ID)
}

func TestResolver_LookupFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	resolver := NewResolver(store, zap.NewNop())

	_, _, err := resolver.Resolve(context.Background(), testWallet, user.TypeFreelancer)
	require.Error(t, err)
}
