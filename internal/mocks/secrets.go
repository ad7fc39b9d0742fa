package mocks

import (
	"errors"
	"sync"
)

// SecretSequence hands out the scripted secrets in order, then fails.
type SecretSequence struct {
	mu      sync.Mutex
	secrets []string
	Calls   int
}

func NewSecretSequence(secrets ...string) *SecretSequence {
	return &SecretSequence{secrets: secrets}
}

// Generate matches user.SecretGenerator; length is ignored.
func (s *SecretSequence) Generate(int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Calls >= len(s.secrets) {
		return "", errors.New("secret sequence exhausted")
	}
	secret := s.secrets[s.Calls]
	s.Calls++
	return secret, nil
}
