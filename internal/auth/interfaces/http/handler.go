// Package http 身份服务 HTTP 接口
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/creditsea/internal/auth/application"
	"github.com/wyfcoding/creditsea/internal/auth/domain"
	"github.com/wyfcoding/creditsea/pkg/response"
)

// Handler 身份 HTTP 处理器
type Handler struct {
	svc *application.AuthService
}

// NewHandler 创建处理器
func NewHandler(svc *application.AuthService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册并登录
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, domain.UserRole(req.Role))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Created(c, user)
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, user)
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, nil)
}

// Me 返回当前登录用户
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context())
	if err != nil {
		writeAuthError(c, err)
		return
	}
	response.Success(c, user)
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidRole):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrNotAuthenticated):
		response.ErrorWithStatus(c, http.StatusUnauthorized, err.Error(), "")
	case errors.Is(err, domain.ErrEmailExists):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
