package cache

import (
	"context"
	"time"

	"PunchClock/storage/redis"
)

// 基于 SetNX 的分布式锁，保证巡检任务在多实例下只跑一份
const (
	lockPrefix = "pclk:lock"
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}
