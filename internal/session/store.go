package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgredis "github.com/roadcasehq/merchtable-backend/pkg/redis"
)

// Store abstracts where session documents live so services can be tested
// without a running Redis.
type Store interface {
	Load(ctx context.Context, userID string) (*Document, error)
	Save(ctx context.Context, userID string, doc *Document) error
	Delete(ctx context.Context, userID string) error
}

type sessionKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SalesSessionKey(userID string) string
}

// RedisStore keeps one JSON document per user under a namespaced key with
// a rolling TTL.
type RedisStore struct {
	kv  sessionKV
	ttl time.Duration
}

// NewRedisStore builds a session store on the shared Redis client.
func NewRedisStore(kv sessionKV, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*Document, error) {
	raw, err := s.kv.Get(ctx, s.kv.SalesSessionKey(userID))
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load sales session: %w", err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode sales session: %w", err)
	}
	return &doc, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, doc *Document) error {
	if doc == nil {
		return s.Delete(ctx, userID)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sales session: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.SalesSessionKey(userID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("save sales session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.kv.Del(ctx, s.kv.SalesSessionKey(userID)); err != nil {
		return fmt.Errorf("delete sales session: %w", err)
	}
	return nil
}
