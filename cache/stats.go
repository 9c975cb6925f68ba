package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/services"
)

const adminStatsKey = "dashboard:admin:last_good"

// 以Redis保存最後一次成功的管理員儀表板資料
type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatsCache) LoadAdminStats(ctx context.Context) (*services.AdminStats, error) {
	data, err := c.rdb.Get(ctx, adminStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats services.AdminStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *RedisStatsCache) StoreAdminStats(ctx context.Context, stats *services.AdminStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, adminStatsKey, data, c.ttl).Err()
}
