package user

import (
	"context"

	"github.com/VitaminP8/forum/models"
)

// UserStorage persists accounts. CreateUser returns apperr.ErrDuplicate when the
// username or lookup is taken; getters return apperr.ErrNotFound.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByLookup(ctx context.Context, lookup string) (*models.User, error)
	LookupExists(ctx context.Context, lookup string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	DeleteUser(ctx context.Context, id uint) error
}

// Tokens is the part of the token service the credential flow needs.
type Tokens interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Revoke(ctx context.Context, userID uint) error
}
