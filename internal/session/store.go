package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lemonhouse/storefront/pkg/redis"
)

// Store persists the serialized user of a session under one well-known key.
type Store interface {
	Save(ctx context.Context, sessionID string, user User) error
	Load(ctx context.Context, sessionID string) ([]byte, bool, error)
	Clear(ctx context.Context, sessionID string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionUserKey(sessionID string) string
}

// RedisStore keeps session users in Redis as JSON strings.
type RedisStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisStore builds a Store on top of the shared redis client.
func NewRedisStore(kv kvStore, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, errors.New("session kv store required")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, user User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	return s.kv.Set(ctx, s.kv.SessionUserKey(sessionID), string(payload), s.ttl)
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.SessionUserKey(sessionID))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, s.kv.SessionUserKey(sessionID))
}
