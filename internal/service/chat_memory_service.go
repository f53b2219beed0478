package service

import (
	"context"

	"chatbot-go/internal/model"
	"chatbot-go/internal/repository"
	"chatbot-go/pkg/tasks"
)

// ChatMemoryProcessor 把 Kafka 中的审计记录写入 chatmemory 表。
type ChatMemoryProcessor struct {
	repo repository.ChatMemoryRepository
}

// NewChatMemoryProcessor 创建审计记录处理器。
func NewChatMemoryProcessor(repo repository.ChatMemoryRepository) *ChatMemoryProcessor {
	return &ChatMemoryProcessor{repo: repo}
}

// Process 实现 kafka.RecordProcessor。
func (p *ChatMemoryProcessor) Process(ctx context.Context, record tasks.ExchangeRecord) error {
	return p.repo.Create(ctx, &model.ChatMemory{
		OwnerID:        record.OwnerID,
		ConversationID: record.ConversationID,
		InputText:      record.InputText,
		CVLabel:        record.CVLabel,
		ImageObject:    record.ImageObject,
		ResponseText:   record.ResponseText,
		CreatedAt:      record.OccurredAt,
	})
}
