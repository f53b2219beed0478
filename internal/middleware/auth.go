// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatbot-go/pkg/token"
)

const (
	claimsKey  = "claims"
	ownerIDKey = "ownerID"
)

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证，并把对话归属者写入上下文。
// jwtManager 为 nil 时不做认证，所有请求共享同一个空归属者。
// token 优先从 Authorization 头读取；WebSocket 握手无法自定义头，退而读取 ?token= 参数。
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtManager == nil {
			c.Set(ownerIDKey, "")
			c.Next()
			return
		}

		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的授权头格式", "data": nil})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, bearerPrefix)
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "请求未包含授权信息", "data": nil})
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效或已过期的 token", "data": nil})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(ownerIDKey, claims.Subject)
		c.Next()
	}
}

// OwnerID 返回 AuthMiddleware 写入的对话归属者。
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}
