package kvstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis 基于 Redis 的键值快照存储
type Redis struct {
	client *redis.Client
}

// NewRedis 创建 Redis 存储
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get 读取键对应的值
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set 写入键值，不设置过期时间（快照永久保留）
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Delete 删除键
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
