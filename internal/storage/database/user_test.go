package database

import (
	"context"
	"testing"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDatabaseStorage(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	storage := NewUserDatabaseStorage(db)

	user := &models.User{Username: "alice", PasswordHash: "hash", PasswordLookup: "lookup-a"}
	require.NoError(t, storage.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	t.Run("Get by id", func(t *testing.T) {
		got, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "lookup-a", got.PasswordLookup)

		_, err = storage.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Get by lookup", func(t *testing.T) {
		got, err := storage.GetUserByLookup(ctx, "lookup-a")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = storage.GetUserByLookup(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Exists checks", func(t *testing.T) {
		ok, err := storage.LookupExists(ctx, "lookup-a")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = storage.LookupExists(ctx, "lookup-b")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = storage.UsernameExists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = storage.UsernameExists(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		err := storage.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "h", PasswordLookup: "lookup-x"})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})

	t.Run("Duplicate lookup", func(t *testing.T) {
		err := storage.CreateUser(ctx, &models.User{Username: "carol", PasswordHash: "h", PasswordLookup: "lookup-a"})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})

	t.Run("Delete frees username and lookup", func(t *testing.T) {
		gone := &models.User{Username: "dave", PasswordHash: "h", PasswordLookup: "lookup-d"}
		require.NoError(t, storage.CreateUser(ctx, gone))
		require.NoError(t, db.Create(&models.Token{ID: "tok-dave", UserID: gone.ID}).Error)

		require.NoError(t, storage.DeleteUser(ctx, gone.ID))

		_, err := storage.GetUserByID(ctx, gone.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		var tokens int
		require.NoError(t, db.Model(&models.Token{}).Where("user_id = ?", gone.ID).Count(&tokens).Error)
		assert.Zero(t, tokens)

		require.NoError(t, storage.CreateUser(ctx, &models.User{Username: "dave", PasswordHash: "h", PasswordLookup: "lookup-d"}))
		assert.ErrorIs(t, storage.DeleteUser(ctx, 999), apperr.ErrNotFound)
	})
}
