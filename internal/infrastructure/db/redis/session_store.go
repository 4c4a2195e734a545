package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/inkpress/blogkit/internal/session"
)

var _ session.Store = (*SessionStore)(nil)

// SessionStore keeps one profile's token in Redis without expiry.
type SessionStore struct {
	client *redis.Client
	key    string
}

// NewSessionStore creates a SessionStore for profile.
func NewSessionStore(client *redis.Client, profile string) *SessionStore {
	return &SessionStore{
		client: client,
		key:    tokenKey(profile),
	}
}

func (s *SessionStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("session get: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
