// Package validator 在提交前检查待发送的消息。它没有任何网络或存储副作用。
package validator

import (
	"strings"

	"chatbot-go/internal/model"
)

// MaxAttachmentBytes 是附件的默认大小上限 (5MB)。
const MaxAttachmentBytes int64 = 5 * 1024 * 1024

// Reason 标识拒绝原因。
type Reason string

const (
	EmptyMessage         Reason = "EmptyMessage"
	UnsupportedMediaType Reason = "UnsupportedMediaType"
	AttachmentTooLarge   Reason = "AttachmentTooLarge"
)

var userMessages = map[Reason]string{
	EmptyMessage:         "Vui lòng nhập tin nhắn hoặc tải lên hình ảnh",
	UnsupportedMediaType: "Vui lòng chọn file hình ảnh (JPEG, PNG, etc.)",
	AttachmentTooLarge:   "Kích thước file không được vượt quá 5MB",
}

// Rejection 是可由用户自行更正的校验失败。
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	return "message rejected: " + string(r.Reason)
}

// UserMessage 返回面向用户的提示文案。
func (r *Rejection) UserMessage() string {
	return userMessages[r.Reason]
}

// Validator 按固定的大小上限校验消息。
type Validator struct {
	maxAttachmentBytes int64
}

// New 创建校验器；maxAttachmentBytes <= 0 时使用 MaxAttachmentBytes。
func New(maxAttachmentBytes int64) *Validator {
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = MaxAttachmentBytes
	}
	return &Validator{maxAttachmentBytes: maxAttachmentBytes}
}

// Validate 检查一次发送：文字（去除空白后）与附件至少有一个，附件须为图片且不超过上限。
func (v *Validator) Validate(text string, attachment *model.Attachment) error {
	if strings.TrimSpace(text) == "" && attachment == nil {
		return &Rejection{Reason: EmptyMessage}
	}
	if attachment != nil {
		return v.ValidateAttachment(attachment)
	}
	return nil
}

// ValidateAttachment 只检查附件，用于暂存附件时。
func (v *Validator) ValidateAttachment(attachment *model.Attachment) error {
	if !IsImage(attachment.MediaType) {
		return &Rejection{Reason: UnsupportedMediaType}
	}
	if attachment.Size() > v.maxAttachmentBytes {
		return &Rejection{Reason: AttachmentTooLarge}
	}
	return nil
}

// IsImage 判断声明的媒体类型是否为图片。
func IsImage(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}
