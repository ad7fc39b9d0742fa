package token

import (
	"context"

	"github.com/VitaminP8/forum/models"
)

// TokenStorage persists issued tokens so they can be revoked server-side.
// GetToken returns apperr.ErrNotFound for unknown ids.
type TokenStorage interface {
	CreateToken(ctx context.Context, token *models.Token) error
	GetToken(ctx context.Context, id string) (*models.Token, error)
	DeleteUserTokens(ctx context.Context, userID uint) error
}
