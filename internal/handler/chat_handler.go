package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatbot-go/internal/middleware"
	"chatbot-go/internal/model"
	"chatbot-go/internal/service"
	"chatbot-go/pkg/log"
)

// unavailableMessage 是服务端故障时返回给客户端的统一错误文案。
const unavailableMessage = "AI服务暂时不可用，请稍后重试"

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责一次问答交换，提供 HTTP 与 WebSocket 两种入口。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage 处理 POST /api/chat/send-message。
// 无论成功与否都返回 200，由响应体中的 success 区分；请求体无法解析时返回 400。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ExchangeResponse{Success: false, Error: "无效的请求负载"})
		return
	}
	c.JSON(http.StatusOK, h.reply(c, req))
}

// Stream 处理 WebSocket 连接：每收到一帧请求就回写一帧响应，直到连接关闭。
func (h *ChatHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	ownerID := middleware.OwnerID(c)
	log.Infow("WebSocket 连接已建立", "ownerId", ownerID)

	for {
		var req model.ExchangeRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(h.reply(c, req)); err != nil {
			log.Warnf("向 WebSocket 写入响应失败: %v", err)
			return
		}
	}
}

func (h *ChatHandler) reply(c *gin.Context, req model.ExchangeRequest) *model.ExchangeResponse {
	resp, err := h.chatService.Reply(c.Request.Context(), middleware.OwnerID(c), req)
	if err != nil {
		log.Errorw("处理问答失败", "conversationId", req.ConversationID, "error", err)
		return &model.ExchangeResponse{Success: false, Error: unavailableMessage}
	}
	return resp
}
