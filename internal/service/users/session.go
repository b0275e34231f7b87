package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the payload stored behind a bearer token.
type Session struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type SessionStore interface {
	Create(ctx context.Context, sess Session, ttl time.Duration) (string, error)
	Resolve(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisSessionStore keeps sessions in redis under an opaque uuid token.
// Expiry is delegated to redis key TTLs.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, sess Session, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session payload: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}

var _ SessionStore = (*RedisSessionStore)(nil)
