package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-go/internal/middleware"
	"chatbot-go/internal/service"
	"chatbot-go/pkg/token"
)

// RouterDeps 是注册路由所需的依赖。JWT 为 nil 时不启用认证。
type RouterDeps struct {
	Conversations service.ConversationService
	Chat          service.ChatService
	JWT           *token.JWTManager
}

// NewRouter 创建带日志与 Recovery 中间件的路由引擎并注册全部接口。
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "ok", "data": nil})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/guest", NewAuthHandler(deps.JWT).GuestToken)

		chat := api.Group("/chat")
		chat.Use(middleware.AuthMiddleware(deps.JWT))
		{
			chatHandler := NewChatHandler(deps.Chat)
			chat.POST("/send-message", chatHandler.SendMessage)
			chat.GET("/ws", chatHandler.Stream)

			conversations := NewConversationHandler(deps.Conversations)
			chat.GET("/conversations", conversations.ListConversations)
			chat.POST("/conversations", conversations.CreateConversation)
			chat.GET("/conversations/:id/messages", conversations.GetMessages)
			chat.POST("/conversations/:id/messages", conversations.AppendMessage)
			chat.DELETE("/conversations/:id", conversations.DeleteConversation)
		}
	}
	return r
}
