package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
)

const OperatorTokenHeader = "X-Operator-Token"

// OperatorToken 运维接口鉴权，token 为空时接口关闭
func OperatorToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.PermissionError(c, "手动触发接口未启用")
			c.Abort()
			return
		}

		given := c.GetHeader(OperatorTokenHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			response.PermissionError(c, "运维令牌无效")
			c.Abort()
			return
		}

		c.Next()
	}
}
