// Package token issues, resolves and revokes bearer tokens.
//
// A token is an HS256 JWT whose jti names a stored row. The signature makes the
// token unforgeable, the row makes it revocable.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenName = "api"

type claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type Service struct {
	store  TokenStorage
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(store TokenStorage, secret []byte, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a new token for userID. Other tokens of the user stay valid.
func (s *Service) Issue(ctx context.Context, userID uint) (string, error) {
	now := s.now()
	row := &models.Token{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      tokenName,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        row.ID,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	})

	tokenString, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.store.CreateToken(ctx, row); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return tokenString, nil
}

// Resolve returns the user a token belongs to, or apperr.ErrUnauthenticated.
func (s *Service) Resolve(ctx context.Context, tokenString string) (uint, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	}

	row, err := s.store.GetToken(ctx, c.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, fmt.Errorf("%w: token revoked", apperr.ErrUnauthenticated)
		}
		return 0, fmt.Errorf("could not get token: %w", err)
	}

	if row.UserID != c.UserID {
		return 0, fmt.Errorf("%w: token owner mismatch", apperr.ErrUnauthenticated)
	}
	if !row.ExpiresAt.After(s.now()) {
		return 0, fmt.Errorf("%w: token expired", apperr.ErrUnauthenticated)
	}

	return row.UserID, nil
}

// Revoke deletes every token of userID.
func (s *Service) Revoke(ctx context.Context, userID uint) error {
	if err := s.store.DeleteUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("could not revoke tokens: %w", err)
	}
	return nil
}
