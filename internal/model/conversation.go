// Package model 包含了应用的数据模型定义。
package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// Role 标识消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TitleWidth 是自动标题的最大显示宽度（东亚宽字符计 2）。
const TitleWidth = 30

// AttachmentTitle 是只有图片、没有文字的首条消息派生出的标题。
const AttachmentTitle = "Hình ảnh"

// Message 是对话中的一条消息。一旦追加到对话中就不再修改；更正以新消息表示。
type Message struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Annotation *Annotation `json:"annotation,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewUserMessage 构造一条用户消息，ID 与时间戳在此固定。
func NewUserMessage(content string, attachment *Attachment) Message {
	return Message{
		ID:         NewMessageID(),
		Role:       RoleUser,
		Content:    content,
		Attachment: attachment,
		Timestamp:  time.Now(),
	}
}

// NewAssistantMessage 构造一条助手消息。
func NewAssistantMessage(content string, annotation *Annotation) Message {
	return Message{
		ID:         NewMessageID(),
		Role:       RoleAssistant,
		Content:    content,
		Annotation: annotation,
		Timestamp:  time.Now(),
	}
}

// Annotation 是助手回复附带的分类结果，渲染在回复正文之上。
type Annotation struct {
	Label      string   `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// NewAnnotation 在 label 与 confidence 都缺失时返回 nil。
func NewAnnotation(label string, confidence *float64) *Annotation {
	label = strings.TrimSpace(label)
	if label == "" && confidence == nil {
		return nil
	}
	return &Annotation{Label: label, Confidence: confidence}
}

// ConfidenceText 将置信度格式化为百分比，保留一位小数；没有置信度时返回空串。
func (a *Annotation) ConfidenceText() string {
	if a == nil || a.Confidence == nil {
		return ""
	}
	return fmt.Sprintf("Độ tin cậy: %.1f%%", *a.Confidence*100)
}

// Conversation 是一组有序消息的容器，拥有独立的 ID 与最近更新时间。
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages,omitempty"`
}

// Summary 返回不含消息的摘要。
func (c Conversation) Summary() Summary {
	return Summary{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt}
}

// Touch 将 UpdatedAt 推进到 t；UpdatedAt 从不回退。
func (c *Conversation) Touch(t time.Time) {
	if t.After(c.UpdatedAt) {
		c.UpdatedAt = t
	}
}

// Summary 是对话列表中的一项。
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeriveTitle 从首条用户消息派生标题：超过 TitleWidth 个显示单位时截断并追加省略号。
func DeriveTitle(msg Message) string {
	text := strings.Join(strings.Fields(msg.Content), " ")
	if text == "" {
		if msg.Attachment != nil {
			return AttachmentTitle
		}
		return ""
	}
	if runewidth.StringWidth(text) <= TitleWidth {
		return text
	}
	return runewidth.Truncate(text, TitleWidth, "") + "..."
}

var lastMessageID atomic.Int64

// NewMessageID 返回基于时间戳的消息 ID，在同一进程内严格递增。
func NewMessageID() string {
	for {
		last := lastMessageID.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if lastMessageID.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

// NewConversationID 返回客户端生成的对话 ID（时间戳 + 随机段），仅用于本地存储。
func NewConversationID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), random[:8])
}
