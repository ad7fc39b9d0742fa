package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/storage/memory"
	"github.com/VitaminP8/forum/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_jwt_secret")

func newTestService() (*Service, *memory.TokenMemoryStorage) {
	store := memory.NewTokenMemoryStorage(memory.New())
	return NewService(store, testSecret, time.Hour), store
}

func TestService_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	t.Run("Issued token resolves to its user", func(t *testing.T) {
		tok, err := svc.Issue(ctx, 7)
		require.NoError(t, err)
		assert.NotEmpty(t, tok)

		userID, err := svc.Resolve(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, uint(7), userID)
	})

	t.Run("Issuing does not revoke other tokens", func(t *testing.T) {
		first, err := svc.Issue(ctx, 8)
		require.NoError(t, err)
		second, err := svc.Issue(ctx, 8)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		_, err = svc.Resolve(ctx, first)
		assert.NoError(t, err)
		_, err = svc.Resolve(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "not-a-token")
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("Wrong signing key", func(t *testing.T) {
		other := NewService(memory.NewTokenMemoryStorage(memory.New()), []byte("another"), time.Hour)
		tok, err := other.Issue(ctx, 7)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("Signed but never stored", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "not-stored",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tok, err := forged.SignedString(testSecret)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.Contains(t, err.Error(), "revoked")
	})

	t.Run("None algorithm rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims{UserID: 7})
		tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})
}

func TestService_Expiry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTokenMemoryStorage(memory.New())
	svc := NewService(store, testSecret, time.Hour)

	t.Run("Expired JWT", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, err := svc.Issue(ctx, 3)
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("Stored row expired", func(t *testing.T) {
		tok, err := svc.Issue(ctx, 3)
		require.NoError(t, err)

		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	a1, err := svc.Issue(ctx, 1)
	require.NoError(t, err)
	a2, err := svc.Issue(ctx, 1)
	require.NoError(t, err)
	b, err := svc.Issue(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, 1))

	_, err = svc.Resolve(ctx, a1)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = svc.Resolve(ctx, a2)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	userID, err := svc.Resolve(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, uint(2), userID)
}

type failingStorage struct{ err error }

func (f failingStorage) CreateToken(context.Context, *models.Token) error { return f.err }
func (f failingStorage) GetToken(context.Context, string) (*models.Token, error) {
	return nil, f.err
}
func (f failingStorage) DeleteUserTokens(context.Context, uint) error { return f.err }

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	svc := NewService(failingStorage{err: boom}, testSecret, time.Hour)

	_, err := svc.Issue(ctx, 1)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, svc.Revoke(ctx, 1), boom)

	// a valid signature with a broken store is a server error, not an auth failure
	good, _ := newTestService()
	tok, err := good.Issue(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tok)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperr.ErrUnauthenticated)
}
