package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/pkg/sessionstore"
	"github.com/lancehub/wallet-sso/pkg/user"
)

var testSecret = []byte("test-secret-0123456789abcdef0123")

// fakeSessionStore records sessions in memory with scriptable failures.
type fakeSessionStore struct {
	sessions  map[string]*sessionstore.Session
	createErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*sessionstore.Session)}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, sess *sessionstore.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[sess.TokenHash] = sess
	return nil
}

func (f *fakeSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*sessionstore.Session, error) {
	sess, ok := f.sessions[tokenHash]
	if !ok {
		return nil, sessionstore.ErrSessionNotFound
	}
	return sess, nil
}

func (f *fakeSessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	if _, ok := f.sessions[tokenHash]; !ok {
		return sessionstore.ErrSessionNotFound
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeSessionStore) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	var removed int64
	for hash, sess := range f.sessions {
		if sess.UserID == userID {
			delete(f.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for hash, sess := range f.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(f.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

func testAccount() *user.Account {
	acct := user.NewWalletAccount("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", user.TypeClient)
	acct.ID = 42
	return acct
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	store := newFakeSessionStore()
	issuer := NewIssuer(testSecret, DefaultTTL, store, zap.NewNop())

	issued, err := issuer.Issue(context.Background(), testAccount(), RequestMetadata{
		IPAddress: "203.0.113.7",
		UserAgent: "test-agent/1.0",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)

	claims, err := issuer.Verify(issued.Token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "client", claims.UserType)
	assert.Equal(t, issued.Session.ID, claims.ID)
}

func TestIssuer_PersistsHashedTokenOnly(t *testing.T) {
	store := newFakeSessionStore()
	issuer := NewIssuer(testSecret, DefaultTTL, store, zap.NewNop())

	issued, err := issuer.Issue(context.Background(), testAccount(), RequestMetadata{})
	require.NoError(t, err)

	stored, err := store.GetByTokenHash(context.Background(), HashToken(issued.Token))
	require.NoError(t, err)
	assert.NotEqual(t, issued.Token, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)
}

func TestIssuer_PersistFailureDoesNotFailLogin(t *testing.T) {
	store := newFakeSessionStore()
	store.createErr = errors.New("connection refused")
	issuer := NewIssuer(testSecret, DefaultTTL, store, zap.NewNop())

	issued, err := issuer.Issue(context.Background(), testAccount(), RequestMetadata{})
	require.NoError(t, err)

	// Token stays verifiable even though the audit record was lost.
	_, err = issuer.Verify(issued.Token)
	require.NoError(t, err)
}

func TestIssuer_Verify_WrongSecret(t *testing.T) {
	issuer := NewIssuer(testSecret, DefaultTTL, newFakeSessionStore(), zap.NewNop())
	other := NewIssuer([]byte("another-secret-entirely-here-ok!"), DefaultTTL, newFakeSessionStore(), zap.NewNop())

	issued, err := other.Issue(context.Background(), testAccount(), RequestMetadata{})
	require.NoError(t, err)

	_, err = issuer.Verify(issued.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Verify_Expired(t *testing.T) {
	store := newFakeSessionStore()
	issuer := NewIssuer(testSecret, time.Hour, store, zap.NewNop())
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	issued, err := issuer.Issue(context.Background(), testAccount(), RequestMetadata{})
	require.NoError(t, err)

	_, err = issuer.Verify(issued.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Verify_RejectsUnsignedToken(t *testing.T) {
	issuer := NewIssuer(testSecret, DefaultTTL, newFakeSessionStore(), zap.NewNop())

	// alg=none token with plausible claims
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_Revoke(t *testing.T) {
	store := newFakeSessionStore()
	issuer := NewIssuer(testSecret, DefaultTTL, store, zap.NewNop())

	issued, err := issuer.Issue(context.Background(), testAccount(), RequestMetadata{})
	require.NoError(t, err)

	require.NoError(t, issuer.Revoke(context.Background(), issued.Token))
	_, err = store.GetByTokenHash(context.Background(), HashToken(issued.Token))
	require.ErrorIs(t, err, sessionstore.ErrSessionNotFound)

	// Revoking an unknown token is a no-op, not an error.
	require.NoError(t, issuer.Revoke(context.Background(), issued.Token))
}

func TestIssuer_RevokeAll(t *testing.T) {
	store := newFakeSessionStore()
	issuer := NewIssuer(testSecret, DefaultTTL, store, zap.NewNop())

	acct := testAccount()
	for i := 0; i < 3; i++ {
		_, err := issuer.Issue(context.Background(), acct, RequestMetadata{})
		require.NoError(t, err)
	}

	removed, err := issuer.RevokeAll(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
