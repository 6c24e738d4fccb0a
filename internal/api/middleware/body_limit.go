package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"convention-planner/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（如 4<<20 = 4MB），论文导入与 ICS 上传同样受限
//
// 声明了 Content-Length 的超限请求直接拒绝；分块上传由 MaxBytesReader 在读取时截断，
// 此时绑定或解析失败，由各 Handler 按参数错误返回。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
