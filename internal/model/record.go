package model

import (
	"strconv"
	"time"
)

// ConversationRecord 是服务端 conversations 表的 ORM 模型。
type ConversationRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OwnerID   string    `gorm:"type:varchar(64);index;not null"`
	Title     string    `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;index"` // 最近一条消息的时间，由服务层维护
}

// TableName 指定了此模型在数据库中对应的表名。
func (ConversationRecord) TableName() string {
	return "conversations"
}

// Summary 转换为对话列表项。
func (r ConversationRecord) Summary() Summary {
	return Summary{ID: FormatRecordID(r.ID), Title: r.Title, UpdatedAt: r.UpdatedAt}
}

// MessageRecord 是服务端 messages 表的 ORM 模型。
type MessageRecord struct {
	ID             uint     `gorm:"primaryKey;autoIncrement"`
	ConversationID uint     `gorm:"index;not null"`
	Role           string   `gorm:"type:varchar(16);not null"`
	Content        string   `gorm:"type:text"`
	Attachment     string   `gorm:"type:mediumtext"` // data URL
	Label          string   `gorm:"type:varchar(100)"`
	Confidence     *float64 `gorm:"default:null"`
	CreatedAt      time.Time
}

// TableName 指定了此模型在数据库中对应的表名。
func (MessageRecord) TableName() string {
	return "messages"
}

// Message 转换为领域消息；无法解析的附件被丢弃。
func (r MessageRecord) Message() Message {
	att, _ := ParseDataURL(r.Attachment)
	var ann *Annotation
	if r.Role == string(RoleAssistant) {
		ann = NewAnnotation(r.Label, r.Confidence)
	}
	return Message{
		ID:         FormatRecordID(r.ID),
		Role:       Role(r.Role),
		Content:    r.Content,
		Attachment: att,
		Annotation: ann,
		Timestamp:  r.CreatedAt,
	}
}

// NewMessageRecord 从领域消息构造待插入的记录。时间戳保留客户端的发送时间。
func NewMessageRecord(conversationID uint, msg Message) *MessageRecord {
	rec := &MessageRecord{
		ConversationID: conversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Attachment:     msg.Attachment.DataURL(),
		CreatedAt:      msg.Timestamp,
	}
	if msg.Annotation != nil {
		rec.Label = msg.Annotation.Label
		rec.Confidence = msg.Annotation.Confidence
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return rec
}

// ChatMemory 记录每一次问答交换，供离线分析使用。
type ChatMemory struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID        string    `gorm:"type:varchar(64);index" json:"ownerId"`
	ConversationID string    `gorm:"type:varchar(64);index" json:"conversationId"`
	InputText      string    `gorm:"type:text;not null" json:"inputText"`
	CVLabel        string    `gorm:"type:varchar(100)" json:"cvLabel"`
	ImageObject    string    `gorm:"type:varchar(255)" json:"imageObject"`
	ResponseText   string    `gorm:"type:text" json:"responseText"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatMemory) TableName() string {
	return "chatmemory"
}

// FormatRecordID 将数据库自增 ID 转为对外的不透明字符串 ID。
func FormatRecordID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseRecordID 是 FormatRecordID 的逆操作。
func ParseRecordID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
