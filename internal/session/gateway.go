// Package session 编排对话生命周期与发送流程，是对话组件的核心。
package session

import "chatbot-go/internal/model"

// Gateway 是会话管理器调用的渲染端。渲染调用是即发即忘的；Confirm 阻塞直到用户作答。
type Gateway interface {
	RenderMessage(msg model.Message)
	ClearTranscript()
	ShowIndicator()
	HideIndicator()
	RenderConversationList(summaries []model.Summary, currentID string)
	// ShowAttachmentPreview 展示待发送的图片；nil 表示移除预览。
	ShowAttachmentPreview(att *model.Attachment)
	ClearComposer()
	// Notify 展示一条不属于对话记录的提示，例如校验失败原因。
	Notify(text string)
	Confirm(prompt string) bool
}
