package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResponseCache guarda payloads crudos de invocaciones identicas.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
}

type redisGetSetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

const cacheKeyPrefix = "llm:resp:"

// CacheKey combina modelo y cuerpo en una clave estable.
func CacheKey(modelID string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(modelID))
	h.Write([]byte{0})
	h.Write(body)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

type redisResponseCache struct {
	rdb    redisGetSetter
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisResponseCache devuelve nil si no hay cliente o el TTL es <= 0 (cache deshabilitada).
func NewRedisResponseCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) ResponseCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return newRedisResponseCache(rdb, ttl, logger)
}

func newRedisResponseCache(rdb redisGetSetter, ttl time.Duration, logger *zap.Logger) *redisResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisResponseCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *redisResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("llm cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(val) == 0 {
		return nil, false
	}
	return val, true
}

func (c *redisResponseCache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("llm cache set failed", zap.String("key", key), zap.Error(err))
	}
}
