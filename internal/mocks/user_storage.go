package mocks

import (
	"context"
	"sync"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/models"
)

// MockUserStorage implements user.UserStorage with knobs for tests:
// lookups listed in TakenLookups report as existing without a user behind them,
// and a non-nil Err makes every call fail.
type MockUserStorage struct {
	mu           sync.Mutex
	users        map[uint]*models.User
	nextID       uint
	TakenLookups map[string]bool
	Err          error

	LookupChecks int
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:        make(map[uint]*models.User),
		nextID:       1,
		TakenLookups: make(map[string]bool),
	}
}

func (m *MockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.PasswordLookup == user.PasswordLookup {
			return apperr.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserStorage) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStorage) GetUserByLookup(_ context.Context, lookup string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.PasswordLookup == lookup {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *MockUserStorage) LookupExists(_ context.Context, lookup string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LookupChecks++
	if m.Err != nil {
		return false, m.Err
	}
	if m.TakenLookups[lookup] {
		return true, nil
	}
	for _, u := range m.users {
		if u.PasswordLookup == lookup {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserStorage) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserStorage) DeleteUser(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// Lookups returns every stored lookup key.
func (m *MockUserStorage) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.PasswordLookup)
	}
	return out
}
