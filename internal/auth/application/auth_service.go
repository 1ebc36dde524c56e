// Package application 身份应用服务：注册、登录与当前会话
package application

import (
	"context"
	"fmt"
	"strings"

	loandomain "github.com/wyfcoding/creditsea/internal/loan/domain"

	"github.com/wyfcoding/creditsea/internal/auth/domain"
	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/logger"
	"github.com/wyfcoding/creditsea/pkg/metrics"
)

// UserDTO 用户视图，不包含任何凭证字段
type UserDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

func toUserDTO(u *domain.User) *UserDTO {
	return &UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), Avatar: u.Avatar}
}

// AuthService 身份应用服务
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	gen      idgen.Generator
	metrics  *metrics.Metrics
}

// NewAuthService 创建身份服务
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, gen idgen.Generator, m *metrics.Metrics) *AuthService {
	return &AuthService{users: users, sessions: sessions, gen: gen, metrics: m}
}

// Register 注册新用户并登录；角色缺省为 applicant
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.UserRole) (*UserDTO, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	existing, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	user, err := domain.NewUser(name, email, password, role, s.gen)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	if err := s.sessions.Set(ctx, domain.NewSession(user)); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return toUserDTO(user), nil
}

// Login 邮箱不区分大小写；邮箱不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, email, password string) (*UserDTO, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.CheckPassword(password) {
		return nil, domain.ErrInvalidCredential
	}

	if err := s.sessions.Set(ctx, domain.NewSession(user)); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.metrics.LoginsTotal.Inc()
	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return toUserDTO(user), nil
}

// Logout 清除当前会话；无会话时也视为成功
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser 返回当前登录用户
func (s *AuthService) CurrentUser(ctx context.Context) (*UserDTO, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// CurrentActor 将当前登录用户映射为信贷域操作者
func (s *AuthService) CurrentActor(ctx context.Context) (loandomain.Actor, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return loandomain.Actor{}, err
	}
	return user.Actor(), nil
}

func (s *AuthService) currentUser(ctx context.Context) (*domain.User, error) {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		// 会话指向的用户已不存在，清掉脏会话
		_ = s.sessions.Clear(ctx)
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}

// EnsureSeedUsers 为空库写入演示账号，已存在的邮箱跳过
func (s *AuthService) EnsureSeedUsers(ctx context.Context) error {
	seeds := []struct {
		name  string
		email string
		role  domain.UserRole
	}{
		{"User Account", "user@example.com", domain.RoleApplicant},
		{"Verifier Account", "verifier@example.com", domain.RoleVerifier},
		{"Admin Account", "admin@example.com", domain.RoleAdmin},
	}

	for _, seed := range seeds {
		existing, err := s.users.GetByEmail(ctx, seed.email)
		if err != nil {
			return fmt.Errorf("failed to check seed user %s: %w", seed.email, err)
		}
		if existing != nil {
			continue
		}
		user, err := domain.NewUser(seed.name, seed.email, "password", seed.role, s.gen)
		if err != nil {
			return err
		}
		if err := s.users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to save seed user %s: %w", seed.email, err)
		}
		logger.Info(ctx, "seed user created", "email", seed.email, "role", seed.role)
	}
	return nil
}
