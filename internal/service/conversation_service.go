// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot-go/internal/model"
	"chatbot-go/internal/repository"
)

var (
	// ErrConversationNotFound 表示对话不存在或不属于当前归属者。
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrInvalidMessage 表示消息的角色或内容不合法。
	ErrInvalidMessage = errors.New("invalid message")
)

// ConversationService 定义了对话业务逻辑的接口。
type ConversationService interface {
	List(ctx context.Context, ownerID string) ([]model.Summary, error)
	Create(ctx context.Context, ownerID, title string) (*model.Conversation, error)
	Messages(ctx context.Context, ownerID, conversationID string) ([]model.Message, error)
	Append(ctx context.Context, ownerID, conversationID string, msg model.Message) (*model.Message, error)
	Delete(ctx context.Context, ownerID, conversationID string) error
}

type conversationService struct {
	repo repository.ConversationRepository
	now  func() time.Time
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo, now: time.Now}
}

func (s *conversationService) List(ctx context.Context, ownerID string) ([]model.Summary, error) {
	records, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Summary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (s *conversationService) Create(ctx context.Context, ownerID, title string) (*model.Conversation, error) {
	now := s.now()
	record := &model.ConversationRecord{
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &model.Conversation{
		ID:        model.FormatRecordID(record.ID),
		Title:     record.Title,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func (s *conversationService) Messages(ctx context.Context, ownerID, conversationID string) ([]model.Message, error) {
	conv, err := s.find(ctx, ownerID, conversationID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Message, 0, len(records))
	for _, r := range records {
		out = append(out, r.Message())
	}
	return out, nil
}

// Append 追加消息；对话尚无标题时由首条用户消息派生，更新时间只前进不后退。
func (s *conversationService) Append(ctx context.Context, ownerID, conversationID string, msg model.Message) (*model.Message, error) {
	if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, msg.Role)
	}
	if msg.Content == "" && msg.Attachment == nil {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidMessage)
	}
	conv, err := s.find(ctx, ownerID, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Title == "" && msg.Role == model.RoleUser {
		conv.Title = model.DeriveTitle(msg)
	}
	if now := s.now(); now.After(conv.UpdatedAt) {
		conv.UpdatedAt = now
	}

	record := model.NewMessageRecord(conv.ID, msg)
	if err := s.repo.AppendMessage(ctx, conv, record); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	committed := record.Message()
	return &committed, nil
}

func (s *conversationService) Delete(ctx context.Context, ownerID, conversationID string) error {
	id, ok := model.ParseRecordID(conversationID)
	if !ok {
		return ErrConversationNotFound
	}
	err := s.repo.Delete(ctx, ownerID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConversationNotFound
	}
	return err
}

func (s *conversationService) find(ctx context.Context, ownerID, conversationID string) (*model.ConversationRecord, error) {
	id, ok := model.ParseRecordID(conversationID)
	if !ok {
		return nil, ErrConversationNotFound
	}
	conv, err := s.repo.Find(ctx, ownerID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	return conv, err
}
