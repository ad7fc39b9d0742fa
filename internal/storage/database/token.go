package database

import (
	"context"
	"fmt"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/jinzhu/gorm"
)

type TokenDatabaseStorage struct {
	db *gorm.DB
}

func NewTokenDatabaseStorage(db *gorm.DB) *TokenDatabaseStorage {
	return &TokenDatabaseStorage{db: db}
}

func (s *TokenDatabaseStorage) CreateToken(_ context.Context, token *models.Token) error {
	err := s.db.Create(token).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicate
		}
		return fmt.Errorf("could not create token: %w", err)
	}
	return nil
}

func (s *TokenDatabaseStorage) GetToken(_ context.Context, id string) (*models.Token, error) {
	var token models.Token
	err := s.db.Where("id = ?", id).First(&token).Error
	if err != nil {
		return nil, notFound(err, "could not get token")
	}
	return &token, nil
}

func (s *TokenDatabaseStorage) DeleteUserTokens(_ context.Context, userID uint) error {
	err := s.db.Where("user_id = ?", userID).Delete(&models.Token{}).Error
	if err != nil {
		return fmt.Errorf("could not delete tokens: %w", err)
	}
	return nil
}
