package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider stores sessions as <prefix>:<sid>:<key> with a sliding TTL.
type RedisProvider struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProvider builds a provider; a zero ttl keeps keys forever.
func NewRedisProvider(client *redis.Client, prefix string, ttl time.Duration) *RedisProvider {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisProvider{client: client, prefix: prefix, ttl: ttl}
}

// Open returns the store of sessionID.
func (p *RedisProvider) Open(sessionID string) Store {
	return &redisStore{provider: p, sid: sessionID}
}

type redisStore struct {
	provider *RedisProvider
	sid      string
}

func (s *redisStore) key(name string) string {
	return s.provider.prefix + ":" + s.sid + ":" + name
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.provider.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if s.provider.ttl > 0 {
		s.provider.client.Expire(ctx, s.key(key), s.provider.ttl)
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.provider.client.Set(ctx, s.key(key), value, s.provider.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.provider.client.Del(ctx, full...).Err()
}
