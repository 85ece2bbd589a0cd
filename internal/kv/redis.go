package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists entries in Redis using native key expiry.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	tracer trace.Tracer
}

// NewRedisStore wraps a Redis client. prefix namespaces every key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if client == nil {
		panic("kv: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		tracer: otel.Tracer("turbothrill.internal.kv.redis"),
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "kv.redis.get", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("kv: redis get: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "kv.redis.set", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	if err := s.redis.Set(ctx, s.key(key), value, redisTTL(ttl)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("kv: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "kv.redis.setnx", trace.WithAttributes(attribute.String("kv.key", key)))
	defer span.End()

	ok, err := s.redis.SetNX(ctx, s.key(key), value, redisTTL(ttl)).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("kv: redis setnx: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("kv: redis delete: %w", err)
	}
	return nil
}

// redisTTL maps "never expires" onto go-redis' zero expiration.
func redisTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl
}

var _ Store = (*RedisStore)(nil)
