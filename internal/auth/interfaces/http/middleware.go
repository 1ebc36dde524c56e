package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/creditsea/internal/auth/application"
	"github.com/wyfcoding/creditsea/internal/auth/domain"
	loandomain "github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/response"
)

const actorContextKey = "current_actor"

// RequireActor 解析当前登录用户并注入请求上下文，未登录返回 401
func RequireActor(svc *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := svc.CurrentActor(c.Request.Context())
		if err != nil {
			if errors.Is(err, domain.ErrNotAuthenticated) {
				response.ErrorWithStatus(c, http.StatusUnauthorized, "not authenticated", "")
			} else {
				response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
			c.Abort()
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRole 限定路由只允许给定角色访问，需在 RequireActor 之后使用
func RequireRole(roles ...loandomain.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "not authenticated", "")
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		response.ErrorWithStatus(c, http.StatusForbidden, "insufficient role", "")
		c.Abort()
	}
}

// ActorFrom 从请求上下文取出当前操作者
func ActorFrom(c *gin.Context) (loandomain.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return loandomain.Actor{}, false
	}
	actor, ok := v.(loandomain.Actor)
	return actor, ok
}
