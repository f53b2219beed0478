package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatbot-go/internal/middleware"
	"chatbot-go/internal/model"
	"chatbot-go/internal/service"
	"chatbot-go/pkg/log"
)

// ConversationHandler 处理与对话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// CreateConversationRequest 是创建对话的请求体，title 可为空。
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// ListConversations 返回当前归属者的对话，最近更新的在前。
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		log.Errorw("ListConversations failed", "error", err)
		respondError(c, http.StatusInternalServerError, "获取对话列表失败")
		return
	}
	respondOK(c, list)
}

// CreateConversation 创建一个空对话。
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "无效的请求负载")
			return
		}
	}
	conv, err := h.service.Create(c.Request.Context(), middleware.OwnerID(c), req.Title)
	if err != nil {
		log.Errorw("CreateConversation failed", "error", err)
		respondError(c, http.StatusInternalServerError, "创建对话失败")
		return
	}
	respondOK(c, conv)
}

// GetMessages 返回对话的全部消息，按追加顺序。
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	msgs, err := h.service.Messages(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, "GetMessages", err)
		return
	}
	respondOK(c, msgs)
}

// AppendMessage 向对话追加一条消息。
func (h *ConversationHandler) AppendMessage(c *gin.Context) {
	var msg model.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	committed, err := h.service.Append(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), msg)
	if err != nil {
		h.fail(c, "AppendMessage", err)
		return
	}
	respondOK(c, committed)
}

// DeleteConversation 删除对话及其消息。
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		h.fail(c, "DeleteConversation", err)
		return
	}
	respondOK(c, nil)
}

func (h *ConversationHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		respondError(c, http.StatusNotFound, "对话不存在")
	case errors.Is(err, service.ErrInvalidMessage):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Errorw(op+" failed", "conversationId", c.Param("id"), "error", err)
		respondError(c, http.StatusInternalServerError, "服务器内部错误")
	}
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}
