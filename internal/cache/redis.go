package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis. Each tag is a set holding the keys stored under it.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{redis: client, prefix: prefix}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) key(k string) string    { return s.prefix + "entry:" + k }
func (s *RedisStore) tagKey(t string) string { return s.prefix + "tag:" + t }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, tag, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.key(key), value, ttl)
	pipe.SAdd(ctx, s.tagKey(tag), s.key(key))
	pipe.Expire(ctx, s.tagKey(tag), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) InvalidateTag(ctx context.Context, tag string) error {
	keys, err := s.redis.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return fmt.Errorf("redis tag members %s: %w", tag, err)
	}
	keys = append(keys, s.tagKey(tag))
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate %s: %w", tag, err)
	}
	return nil
}
