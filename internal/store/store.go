// Package store 定义了对话持久化适配器及其远程、本地两种实现。
// 每个部署只启用其中一种；所有调用各自原子、彼此独立，不提供跨调用事务。
package store

import (
	"context"
	"errors"

	"chatbot-go/internal/model"
)

var (
	// ErrTransport 表示适配器层面的失败：网络/HTTP 错误，或本地序列化、配额错误。
	ErrTransport = errors.New("transport failure")
	// ErrNotFound 表示对话不存在。删除时调用方应视同成功。
	ErrNotFound = errors.New("conversation not found")
)

// Store 是对话与消息的持久化适配器。
type Store interface {
	// ListConversations 返回对话摘要，最近更新的在前。
	ListConversations(ctx context.Context) ([]model.Summary, error)
	// CreateConversation 创建对话，ID 由适配器分配。title 可为空，首条用户消息会派生标题。
	CreateConversation(ctx context.Context, title string) (*model.Conversation, error)
	// GetMessages 按发送顺序返回对话的全部消息。
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	// AppendMessage 追加一条消息，返回的值以适配器为准（远程存储可能改写 ID）。
	AppendMessage(ctx context.Context, conversationID string, msg model.Message) (*model.Message, error)
	// DeleteConversation 删除一个对话；不存在时返回 ErrNotFound。
	DeleteConversation(ctx context.Context, conversationID string) error
	// DeleteAll 删除全部对话。
	DeleteAll(ctx context.Context) error
}
