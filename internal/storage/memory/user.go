package memory

import (
	"context"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
)

type UserMemoryStorage struct {
	db *DB
}

func NewUserMemoryStorage(db *DB) *UserMemoryStorage {
	return &UserMemoryStorage{db: db}
}

func (s *UserMemoryStorage) CreateUser(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.usernames[user.Username]; taken {
		return apperr.ErrDuplicate
	}
	if _, taken := s.db.lookups[user.PasswordLookup]; taken {
		return apperr.ErrDuplicate
	}

	now := s.db.now()
	user.ID = s.db.nextUserID
	s.db.nextUserID++
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.db.users[user.ID] = &stored
	s.db.usernames[user.Username] = user.ID
	s.db.lookups[user.PasswordLookup] = user.ID
	return nil
}

func (s *UserMemoryStorage) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserMemoryStorage) GetUserByLookup(_ context.Context, lookup string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.lookups[lookup]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s.db.users[id]
	return &cp, nil
}

func (s *UserMemoryStorage) LookupExists(_ context.Context, lookup string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, ok := s.db.lookups[lookup]
	return ok, nil
}

func (s *UserMemoryStorage) UsernameExists(_ context.Context, username string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	_, ok := s.db.usernames[username]
	return ok, nil
}

// DeleteUser removes an account together with its tokens.
func (s *UserMemoryStorage) DeleteUser(_ context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	for tid, t := range s.db.tokens {
		if t.UserID == id {
			delete(s.db.tokens, tid)
		}
	}
	delete(s.db.usernames, u.Username)
	delete(s.db.lookups, u.PasswordLookup)
	delete(s.db.users, id)
	return nil
}
