package cache

import (
	"context"
	"errors"
	"time"

	rediscache "github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"

	"shopper/internal/core/apperror"
)

const tagKeyPrefix = "tag:"

// Tag sets outlive their members slightly so a member expiring never
// strands an eviction.
const tagTTLSlack = time.Minute

// RedisStore is the production cache. Values go through the
// msgpack-based codec of go-redis/cache; tag membership is tracked in
// plain Redis sets so invalidation works across nodes. No local cache
// tier: local copies cannot be evicted by a tag flush from another
// node.
type RedisStore struct {
	client *redis.Client
	codec  *rediscache.Cache
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		codec:  rediscache.New(&rediscache.Options{Redis: client}),
	}
}

// Get loads a cached value into dest. A miss is (false, nil).
func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	err := s.codec.Get(ctx, key, dest)
	if errors.Is(err, rediscache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewCacheStore(err)
	}
	return true, nil
}

// Set stores a value and registers the key under each tag.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {
	err := s.codec.Set(&rediscache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
	if err != nil {
		return apperror.NewCacheStore(err)
	}

	if len(tags) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, tag := range tags {
		tagKey := tagKeyPrefix + tag
		pipe.SAdd(ctx, tagKey, key)
		pipe.Expire(ctx, tagKey, ttl+tagTTLSlack)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperror.NewCacheStore(err)
	}
	return nil
}

// InvalidateTag evicts every key registered under the tag, then the
// tag set itself.
func (s *RedisStore) InvalidateTag(ctx context.Context, tag string) error {
	tagKey := tagKeyPrefix + tag

	keys, err := s.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return apperror.NewCacheStore(err)
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, tagKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperror.NewCacheStore(err)
	}
	return nil
}
