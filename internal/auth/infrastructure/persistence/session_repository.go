package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wyfcoding/creditsea/internal/auth/domain"
	"github.com/wyfcoding/creditsea/pkg/kvstore"
)

// SessionKey 当前会话在存储后端中的键
const SessionKey = "currentUser"

// KVSessionRepository 基于 KV 存储的单槽会话仓储
type KVSessionRepository struct {
	store kvstore.Store
	key   string
}

// NewKVSessionRepository 创建会话仓储
func NewKVSessionRepository(store kvstore.Store, key string) *KVSessionRepository {
	if key == "" {
		key = SessionKey
	}
	return &KVSessionRepository{store: store, key: key}
}

func (r *KVSessionRepository) Set(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (r *KVSessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// 损坏的会话视为未登录
		return nil, nil
	}
	return &session, nil
}

func (r *KVSessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
