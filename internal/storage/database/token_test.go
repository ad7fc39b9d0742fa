package database

import (
	"context"
	"testing"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenDatabaseStorage(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	storage := NewTokenDatabaseStorage(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	for _, tok := range []*models.Token{
		{ID: "a-1", UserID: alice.ID, Name: "api", ExpiresAt: expires},
		{ID: "a-2", UserID: alice.ID, Name: "api", ExpiresAt: expires},
		{ID: "b-1", UserID: bob.ID, Name: "api", ExpiresAt: expires},
	} {
		require.NoError(t, storage.CreateToken(ctx, tok))
	}

	t.Run("Get", func(t *testing.T) {
		got, err := storage.GetToken(ctx, "a-1")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.UserID)
		assert.True(t, expires.Equal(got.ExpiresAt))

		_, err = storage.GetToken(ctx, "nope")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		err := storage.CreateToken(ctx, &models.Token{ID: "a-1", UserID: bob.ID, ExpiresAt: expires})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})

	t.Run("Delete only the user's tokens", func(t *testing.T) {
		require.NoError(t, storage.DeleteUserTokens(ctx, alice.ID))

		_, err := storage.GetToken(ctx, "a-1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = storage.GetToken(ctx, "a-2")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = storage.GetToken(ctx, "b-1")
		assert.NoError(t, err)

		assert.NoError(t, storage.DeleteUserTokens(ctx, alice.ID))
	})
}
