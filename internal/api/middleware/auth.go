package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"convention-planner/pkg/jwt"
	"convention-planner/pkg/redis"
	"convention-planner/pkg/response"
)

// ConventionAuth 会议编辑令牌认证中间件
// 从 Authorization: Bearer <token> 中提取编辑令牌，且令牌必须属于路径参数 :id 对应的会议。
// rdb 为 nil 时跳过撤销检查。
func ConventionAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		// ParseToken 同时校验令牌类型
		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行
			if err == nil && revoked {
				response.Unauthorized(c, 11004, "Token 已被撤销")
				c.Abort()
				return
			}
		}

		if id := c.Param("id"); id != "" && id != claims.ConventionID {
			response.Forbidden(c, 10003, "令牌不属于该会议")
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("convention_id", claims.ConventionID)

		c.Next()
	}
}
