// Package redis keeps bearer token records in Redis so that several server
// instances share sessions and revocations.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/VitaminP8/forum/internal/config"
	"github.com/VitaminP8/forum/models"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "forum:"

// NewClient creates and pings a Redis client.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// TokenRedisStorage stores each token as JSON under <prefix>token:<id> with a TTL
// matching its expiry, and indexes the ids of a user in the set <prefix>user_tokens:<user id>.
type TokenRedisStorage struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewTokenRedisStorage(rdb *redis.Client, prefix string) *TokenRedisStorage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &TokenRedisStorage{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *TokenRedisStorage) tokenKey(id string) string {
	return s.prefix + "token:" + id
}

func (s *TokenRedisStorage) userKey(userID uint) string {
	return fmt.Sprintf("%suser_tokens:%d", s.prefix, userID)
}

func (s *TokenRedisStorage) CreateToken(ctx context.Context, token *models.Token) error {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("token %s is already expired", token.ID)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("could not encode token: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.tokenKey(token.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("could not store token: %w", err)
	}
	if !ok {
		return apperr.ErrDuplicate
	}

	userKey := s.userKey(token.UserID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, userKey, token.ID)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not index token: %w", err)
	}
	return nil
}

func (s *TokenRedisStorage) GetToken(ctx context.Context, id string) (*models.Token, error) {
	data, err := s.rdb.Get(ctx, s.tokenKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get token: %w", err)
	}

	var token models.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("could not decode token: %w", err)
	}
	return &token, nil
}

func (s *TokenRedisStorage) DeleteUserTokens(ctx context.Context, userID uint) error {
	userKey := s.userKey(userID)
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("could not list tokens: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.tokenKey(id))
	}
	keys = append(keys, userKey)

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("could not delete tokens: %w", err)
	}
	return nil
}
