// Package kvstore 提供键值快照存储抽象，支持 Redis、MySQL 与内存后端
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound 键不存在
var ErrKeyNotFound = errors.New("key not found")

// Store 键值快照存储接口
type Store interface {
	// Get 读取键对应的值；键不存在时返回 ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 写入键值，覆盖已有值
	Set(ctx context.Context, key string, value []byte) error
	// Delete 删除键；键不存在时不视为错误
	Delete(ctx context.Context, key string) error
}

// Memory 内存实现，用于测试与开发环境
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get 读取键对应的值
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

// Set 写入键值
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

// Delete 删除键
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
