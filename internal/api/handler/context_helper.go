package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"convention-planner/internal/service"
	"convention-planner/pkg/jwt"
	"convention-planner/pkg/response"
)

// MustGetClaims 从 Gin 上下文中安全提取编辑令牌声明。
// 如果 ConventionAuth 中间件未注入 claims，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// mustConventionID 读取路径参数 :id
func mustConventionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "会议ID不能为空")
		return "", false
	}
	return id, true
}

// handleConventionError 各模块共用的会议级错误，未识别的错误统一返回 500
func handleConventionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConventionNotFound):
		response.NotFound(c, 12001, "会议不存在")
	case errors.Is(err, service.ErrConventionVersionConflict):
		response.Conflict(c, 12002, "会议已被修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
