package domain

// Session 当前登录会话，对应 KV 存储中的单一槽位
type Session struct {
	UserID string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar"`
}

// NewSession 由用户创建会话
func NewSession(u *User) *Session {
	return &Session{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}
