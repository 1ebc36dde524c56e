// Package http 信贷申请 HTTP 接口
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	authhttp "github.com/wyfcoding/creditsea/internal/auth/interfaces/http"
	"github.com/wyfcoding/creditsea/internal/loan/application"
	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/response"
)

// Handler 申请 HTTP 处理器
type Handler struct {
	commands *application.CommandService
	queries  *application.QueryService
}

// NewHandler 创建处理器
func NewHandler(commands *application.CommandService, queries *application.QueryService) *Handler {
	return &Handler{commands: commands, queries: queries}
}

// RegisterRoutes 注册路由；全部路由要求已登录
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	apps := rg.Group("/applications")
	{
		apps.POST("", h.Submit)
		apps.GET("", authhttp.RequireRole(domain.RoleVerifier, domain.RoleAdmin), h.List)
		apps.GET("/mine", h.ListMine)
		apps.GET("/stats", authhttp.RequireRole(domain.RoleVerifier, domain.RoleAdmin), h.Stats)
		apps.GET("/:id", h.Get)
		apps.PUT("/:id/status", h.UpdateStatus)
	}
}

type submitRequest struct {
	Type   string  `json:"type" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Submit 提交新申请
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, ok := authhttp.ActorFrom(c)
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	app, err := h.commands.SubmitApplication(c.Request.Context(), actor, req.Type, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, app)
}

// UpdateStatus 流转申请状态
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor, ok := authhttp.ActorFrom(c)
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	app, err := h.commands.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), domain.ApplicationStatus(req.Status), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, app)
}

// List 返回全部申请，支持 status 过滤
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if status := c.Query("status"); status != "" {
		apps, err := h.queries.ListByStatus(ctx, domain.ApplicationStatus(status))
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, apps)
		return
	}

	apps, err := h.queries.ListAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, apps)
}

// ListMine 返回当前操作者自己的申请
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := authhttp.ActorFrom(c)
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	apps, err := h.queries.ListByApplicant(c.Request.Context(), actor.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, apps)
}

// Stats 返回实时统计
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.queries.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, stats)
}

// Get 按 ID 返回申请
func (h *Handler) Get(c *gin.Context) {
	app, err := h.queries.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, app)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidAmount):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrRoleNotAllowed):
		response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, domain.ErrApplicationNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrInvalidTransition):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
