// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatbot-go/internal/model"
)

// ErrNotFound 表示对话不存在或不属于该归属者。
var ErrNotFound = errors.New("record not found")

// ConversationRepository 定义了对话与消息的持久化操作。
type ConversationRepository interface {
	List(ctx context.Context, ownerID string) ([]model.ConversationRecord, error)
	Create(ctx context.Context, record *model.ConversationRecord) error
	Find(ctx context.Context, ownerID string, id uint) (*model.ConversationRecord, error)
	Messages(ctx context.Context, conversationID uint) ([]model.MessageRecord, error)
	// AppendMessage 在一个事务中插入消息并写回对话的标题与更新时间。
	AppendMessage(ctx context.Context, conversation *model.ConversationRecord, message *model.MessageRecord) error
	Delete(ctx context.Context, ownerID string, id uint) error
}

type gormConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个基于 GORM 的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// List 返回归属者的全部对话，最近更新的在前。
func (r *gormConversationRepository) List(ctx context.Context, ownerID string) ([]model.ConversationRecord, error) {
	var records []model.ConversationRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return records, nil
}

func (r *gormConversationRepository) Create(ctx context.Context, record *model.ConversationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormConversationRepository) Find(ctx context.Context, ownerID string, id uint) (*model.ConversationRecord, error) {
	var record model.ConversationRecord
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Messages 按插入顺序返回消息。
func (r *gormConversationRepository) Messages(ctx context.Context, conversationID uint) ([]model.MessageRecord, error) {
	var records []model.MessageRecord
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return records, nil
}

func (r *gormConversationRepository) AppendMessage(ctx context.Context, conversation *model.ConversationRecord, message *model.MessageRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.ConversationRecord{}).
			Where("id = ?", conversation.ID).
			Updates(map[string]interface{}{
				"title":      conversation.Title,
				"updated_at": conversation.UpdatedAt,
			}).Error
	})
}

// Delete 删除对话及其消息。
func (r *gormConversationRepository) Delete(ctx context.Context, ownerID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.ConversationRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("conversation_id = ?", id).Delete(&model.MessageRecord{}).Error
	})
}
