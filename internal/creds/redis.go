package creds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// sessionTTL matches the refresh-token horizon; a session the backend can
// no longer refresh is not worth keeping around.
const sessionTTL = 7 * 24 * time.Hour

// RedisStore persists sessions in Redis, one JSON value per visitor so a
// save or clear is a single atomic command.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, visitorID string, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionPrefix+visitorID, data, sessionTTL).Err()
}

func (s *RedisStore) Load(ctx context.Context, visitorID string) (Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+visitorID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisStore) Clear(ctx context.Context, visitorID string) error {
	return s.client.Del(ctx, sessionPrefix+visitorID).Err()
}
