package database

import (
	"context"
	"fmt"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
	"github.com/jinzhu/gorm"
)

type UserDatabaseStorage struct {
	db *gorm.DB
}

func NewUserDatabaseStorage(db *gorm.DB) *UserDatabaseStorage {
	return &UserDatabaseStorage{db: db}
}

func (s *UserDatabaseStorage) CreateUser(_ context.Context, user *models.User) error {
	err := s.db.Create(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicate
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (s *UserDatabaseStorage) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err, "could not get user by id")
	}
	return &user, nil
}

func (s *UserDatabaseStorage) GetUserByLookup(_ context.Context, lookup string) (*models.User, error) {
	var user models.User
	err := s.db.Where("password_lookup = ?", lookup).First(&user).Error
	if err != nil {
		return nil, notFound(err, "could not get user by lookup")
	}
	return &user, nil
}

func (s *UserDatabaseStorage) LookupExists(_ context.Context, lookup string) (bool, error) {
	return s.exists("password_lookup = ?", lookup)
}

func (s *UserDatabaseStorage) UsernameExists(_ context.Context, username string) (bool, error) {
	return s.exists("username = ?", username)
}

// DeleteUser removes an account together with its token rows.
func (s *UserDatabaseStorage) DeleteUser(_ context.Context, id uint) error {
	return withTx(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return fmt.Errorf("could not delete tokens: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("could not delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

func (s *UserDatabaseStorage) exists(query string, arg interface{}) (bool, error) {
	var count int
	err := s.db.Model(&models.User{}).Where(query, arg).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("could not count users: %w", err)
	}
	return count > 0, nil
}

// notFound maps gorm's missing-row error to apperr.ErrNotFound and wraps anything else.
func notFound(err error, msg string) error {
	if gorm.IsRecordNotFoundError(err) {
		return apperr.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
