// Package user issues account passwords and authenticates them.
//
// A password is generated by the server and shown once. Two values are stored:
// a salted bcrypt hash that verifies it, and an HMAC lookup key that finds the
// row in one indexed read instead of scanning every hash.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/validation"
	"github.com/VitaminP8/forum/models"
	"golang.org/x/crypto/bcrypt"
)

const usernameTaken = "The username has already been taken."

type Options struct {
	// LookupKey keys the HMAC; it never leaves the server.
	LookupKey      []byte
	PasswordLength int
	MaxAttempts    int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Generate   SecretGenerator
}

type Service struct {
	store  UserStorage
	tokens Tokens
	log    logging.Logger
	opts   Options

	// dummyHash is compared on lookup misses so both failure paths cost one bcrypt run.
	dummyHash string
}

func NewService(store UserStorage, tokens Tokens, log logging.Logger, opts Options) (*Service, error) {
	if len(opts.LookupKey) == 0 {
		return nil, errors.New("lookup key is empty")
	}
	if opts.PasswordLength <= 0 {
		opts.PasswordLength = 20
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Generate == nil {
		opts.Generate = GenerateSecret
	}

	dummy, err := HashSecret("dummy-password-for-timing", opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     store,
		tokens:    tokens,
		log:       log.With("component", "credentials"),
		opts:      opts,
		dummyHash: dummy,
	}, nil
}

// Register creates an account with a generated password and returns that password once,
// together with a first token.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	taken, err := s.store.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("could not check username: %w", err)
	}
	if taken {
		return nil, apperr.Field("username", usernameTaken)
	}

	secret, lookup, err := s.uniqueSecret(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := HashSecret(secret, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       req.Username,
		PasswordHash:   hash,
		PasswordLookup: lookup,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			// lost a race with a concurrent registration
			if taken, _ := s.store.UsernameExists(ctx, req.Username); taken {
				return nil, apperr.Field("username", usernameTaken)
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		// the password was never shown, so the account would be unusable
		if delErr := s.store.DeleteUser(ctx, user.ID); delErr != nil {
			s.log.Error(ctx, "could not remove user after token failure", "user_id", user.ID, "error", delErr)
		}
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return &models.RegisterResult{
		Username: user.Username,
		Password: secret,
		Token:    token,
	}, nil
}

// uniqueSecret generates secrets until one maps to an unused lookup key.
func (s *Service) uniqueSecret(ctx context.Context) (string, string, error) {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		secret, err := s.opts.Generate(s.opts.PasswordLength)
		if err != nil {
			return "", "", err
		}
		lookup := LookupKey(secret, s.opts.LookupKey)

		exists, err := s.store.LookupExists(ctx, lookup)
		if err != nil {
			return "", "", fmt.Errorf("could not check password lookup: %w", err)
		}
		if !exists {
			return secret, lookup, nil
		}
		s.log.Warn(ctx, "password lookup collision, regenerating", "attempt", attempt)
	}

	s.log.Error(ctx, "password lookup collisions exhausted all attempts", "attempts", s.opts.MaxAttempts)
	return "", "", apperr.ErrLookupExhausted
}

// Login authenticates a password alone. An unknown password and a wrong one fail identically.
// On success every earlier token of the account is revoked before the new one is issued.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}

	lookup := LookupKey(req.Password, s.opts.LookupKey)
	user, err := s.store.GetUserByLookup(ctx, lookup)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("could not find user: %w", err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	if !VerifySecret(hash, req.Password) || user == nil {
		s.log.Info(ctx, "login failed")
		return nil, apperr.ErrInvalidCredentials
	}

	if err := s.tokens.Revoke(ctx, user.ID); err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)

	return &models.LoginResult{
		Token: token,
		User:  models.Author{ID: user.ID, Username: user.Username},
	}, nil
}

// Logout revokes every token of the user.
func (s *Service) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Me returns the public identity of userID.
func (s *Service) Me(ctx context.Context, userID uint) (*models.Author, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Author{ID: user.ID, Username: user.Username}, nil
}
