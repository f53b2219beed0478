package repository

import (
	"context"

	"gorm.io/gorm"

	"chatbot-go/internal/model"
)

// ChatMemoryRepository 保存问答交换的审计记录。
type ChatMemoryRepository interface {
	Create(ctx context.Context, record *model.ChatMemory) error
}

type gormChatMemoryRepository struct {
	db *gorm.DB
}

// NewChatMemoryRepository 创建一个基于 GORM 的 ChatMemoryRepository 实例。
func NewChatMemoryRepository(db *gorm.DB) ChatMemoryRepository {
	return &gormChatMemoryRepository{db: db}
}

func (r *gormChatMemoryRepository) Create(ctx context.Context, record *model.ChatMemory) error {
	return r.db.WithContext(ctx).Create(record).Error
}
