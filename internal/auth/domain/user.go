// Package domain 身份域模型：用户、角色与会话
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	loandomain "github.com/wyfcoding/creditsea/internal/loan/domain"

	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/security"
)

var (
	// ErrInvalidCredential 登录失败；不区分邮箱不存在与密码错误
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrEmailExists       = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidRole       = errors.New("invalid role")
	ErrValidation        = errors.New("validation failed")
)

// UserRole 用户角色
type UserRole string

const (
	RoleApplicant UserRole = "applicant"
	RoleVerifier  UserRole = "verifier"
	RoleAdmin     UserRole = "admin"
)

// ValidRole 判断角色是否合法
func ValidRole(r UserRole) bool {
	switch r {
	case RoleApplicant, RoleVerifier, RoleAdmin:
		return true
	}
	return false
}

// User 用户实体
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser 创建用户；邮箱归一化为小写，密码以 bcrypt 哈希存储
func NewUser(name, email, password string, role UserRole, gen idgen.Generator) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if role == "" {
		role = RoleApplicant
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := fmt.Sprintf("USR%d", gen.Generate())
	now := time.Now()
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Avatar:       fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", id),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword 校验明文密码
func (u *User) CheckPassword(password string) bool {
	return security.CheckPassword(password, u.PasswordHash)
}

// HasRole 判断用户是否属于给定角色之一
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Actor 将用户映射为信贷域的操作者视图
func (u *User) Actor() loandomain.Actor {
	return loandomain.Actor{
		ID:     u.ID,
		Name:   u.Name,
		Role:   loandomain.ActorRole(u.Role),
		Avatar: u.Avatar,
	}
}
