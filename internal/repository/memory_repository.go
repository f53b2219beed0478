package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatbot-go/internal/model"
)

// memoryConversationRepository 是未配置 MySQL 时使用的进程内实现，重启即丢失。
type memoryConversationRepository struct {
	mu            sync.Mutex
	nextConvID    uint
	nextMessageID uint
	conversations map[uint]model.ConversationRecord
	messages      map[uint][]model.MessageRecord
}

// NewMemoryConversationRepository 创建进程内的 ConversationRepository。
func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{
		conversations: make(map[uint]model.ConversationRecord),
		messages:      make(map[uint][]model.MessageRecord),
	}
}

func (r *memoryConversationRepository) List(_ context.Context, ownerID string) ([]model.ConversationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.ConversationRecord
	for _, c := range r.conversations {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memoryConversationRepository) Create(_ context.Context, record *model.ConversationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextConvID++
	record.ID = r.nextConvID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.conversations[record.ID] = *record
	return nil
}

func (r *memoryConversationRepository) Find(_ context.Context, ownerID string, id uint) (*model.ConversationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryConversationRepository) Messages(_ context.Context, conversationID uint) ([]model.MessageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]model.MessageRecord(nil), r.messages[conversationID]...), nil
}

func (r *memoryConversationRepository) AppendMessage(_ context.Context, conversation *model.ConversationRecord, message *model.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.conversations[conversation.ID]
	if !ok {
		return ErrNotFound
	}
	r.nextMessageID++
	message.ID = r.nextMessageID
	r.messages[conversation.ID] = append(r.messages[conversation.ID], *message)
	stored.Title = conversation.Title
	stored.UpdatedAt = conversation.UpdatedAt
	r.conversations[conversation.ID] = stored
	return nil
}

func (r *memoryConversationRepository) Delete(_ context.Context, ownerID string, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.conversations, id)
	delete(r.messages, id)
	return nil
}
