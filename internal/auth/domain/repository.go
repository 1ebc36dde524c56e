package domain

import "context"

// UserRepository 用户仓储接口；未命中时返回 (nil, nil)
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// SessionRepository 单槽会话仓储；无会话时 Get 返回 (nil, nil)
type SessionRepository interface {
	Set(ctx context.Context, session *Session) error
	Get(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}
