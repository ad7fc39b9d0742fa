package memory

import (
	"context"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
)

type TokenMemoryStorage struct {
	db *DB
}

func NewTokenMemoryStorage(db *DB) *TokenMemoryStorage {
	return &TokenMemoryStorage{db: db}
}

func (s *TokenMemoryStorage) CreateToken(_ context.Context, token *models.Token) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.tokens[token.ID]; exists {
		return apperr.ErrDuplicate
	}
	stored := *token
	s.db.tokens[token.ID] = &stored
	return nil
}

func (s *TokenMemoryStorage) GetToken(_ context.Context, id string) (*models.Token, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	t, ok := s.db.tokens[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *TokenMemoryStorage) DeleteUserTokens(_ context.Context, userID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, t := range s.db.tokens {
		if t.UserID == userID {
			delete(s.db.tokens, id)
		}
	}
	return nil
}
