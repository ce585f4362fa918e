package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/pkg/logger"
)

// 缓存键前缀
const (
	PrefixProduct  = "catalog:product:"
	PrefixCategory = "catalog:category:"
	PrefixHome     = "catalog:home:"
)

// Cache 目录读缓存；读写失败只记录日志，不影响主流程
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefixes ...string)
}

// Counters 命中统计
type Counters struct {
	Hits   int64
	Misses int64
	Loads  int64
}

// RedisCache 基于 Redis 的 JSON 缓存
type RedisCache struct {
	client *redis.Client

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		c.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// 结构变更后的旧数据当作未命中
		c.misses.Add(1)
		return false
	}
	c.hits.Add(1)
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefixes ...string) {
	for _, prefix := range prefixes {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 200).Result()
			if err != nil {
				logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
				break
			}
			if len(keys) > 0 {
				pipe := c.client.Pipeline()
				pipe.Del(ctx, keys...)
				if _, err := pipe.Exec(ctx); err != nil {
					logger.Warn("cache delete failed", zap.String("prefix", prefix), zap.Error(err))
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
}

// Counters 返回当前命中统计
func (c *RedisCache) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Misses: c.misses.Load(), Loads: c.loads.Load()}
}

// ResetCounters 清空统计
func (c *RedisCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.loads.Store(0)
}

// Nop 不缓存
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool           { return false }
func (Nop) Set(context.Context, string, any, time.Duration) {}
func (Nop) DeletePrefix(context.Context, ...string)         {}

type loadCounter interface{ countLoad() }

func (c *RedisCache) countLoad() { c.loads.Add(1) }

// Remember 读穿缓存：命中直接返回，否则调用 load 并回写
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if c.Get(ctx, key, &out) {
		return out, nil
	}
	if lc, ok := c.(loadCounter); ok {
		lc.countLoad()
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	c.Set(ctx, key, out, ttl)
	return out, nil
}
