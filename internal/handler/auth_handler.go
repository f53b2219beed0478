// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chatbot-go/pkg/log"
	"chatbot-go/pkg/token"
)

// AuthHandler 负责签发访客令牌。
type AuthHandler struct {
	jwtManager *token.JWTManager
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager}
}

// GuestToken 为匿名访客生成一个新的归属者标识并签发令牌。
// 未启用认证时返回空令牌，客户端照常访问即可。
func (h *AuthHandler) GuestToken(c *gin.Context) {
	if h.jwtManager == nil {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "auth disabled", "data": gin.H{"token": ""}})
		return
	}

	guestID := "guest-" + uuid.NewString()
	tokenString, err := h.jwtManager.GenerateToken(guestID, token.RoleGuest)
	if err != nil {
		log.Errorw("GuestToken: failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "签发令牌失败", "data": nil})
		return
	}

	log.Infow("guest token issued", "ownerId", guestID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"token": tokenString},
	})
}
