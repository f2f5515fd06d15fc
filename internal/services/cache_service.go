package services

import (
	"context"
	"time"

	"goshop/pkg/cache"
	"goshop/pkg/logger"
)

// CacheService is the read-through cache surface the repositories use. Kept
// deliberately small; repositories must work with a nil cache as well.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type cacheService struct {
	redis      *cache.RedisCache
	logger     *logger.Logger
	keyPrefix  string
	defaultTTL time.Duration
}

func NewCacheService(redis *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		redis:      redis,
		logger:     log,
		keyPrefix:  "goshop:",
		defaultTTL: 30 * time.Minute,
	}
}

func (s *cacheService) key(key string) string {
	return s.keyPrefix + key
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, s.key(key), dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = s.defaultTTL
	}

	if err := s.redis.Set(ctx, s.key(key), value, expiration); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache set failed")
		return err
	}
	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}
	return s.redis.Delete(ctx, prefixed...)
}

func (s *cacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}
