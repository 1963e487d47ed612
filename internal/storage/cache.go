package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "cache:"

func (s *Service) CacheGet(ctx context.Context, key string) ([]byte, error) {
	if s.Redis == nil {
		return nil, ErrCacheMiss
	}
	val, err := s.Redis.Get(ctx, cachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Service) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.Redis == nil {
		return ErrCacheDisabled
	}
	return s.Redis.Set(ctx, cachePrefix+key, value, ttl).Err()
}

func (s *Service) CacheDelete(ctx context.Context, key string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, cachePrefix+key).Err()
}
