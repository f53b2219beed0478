package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatbot-go/internal/model"
	"chatbot-go/pkg/log"
)

// 本地存储的默认上限。
const (
	DefaultNamespace        = "chatbot:conversations"
	DefaultMaxConversations = 50
	DefaultMaxMessages      = 100
	DefaultMaxBlobBytes     = 5 * 1024 * 1024
)

// LocalOptions 配置本地存储。零值字段使用默认值。
type LocalOptions struct {
	Namespace        string
	MaxConversations int // 超出时静默淘汰最久未更新的对话
	MaxMessages      int // 每个对话保留的最近消息数
	MaxBlobBytes     int // 序列化后的大小上限，超出视为配额错误
	Now              func() time.Time
}

func (o *LocalOptions) applyDefaults() {
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.MaxConversations <= 0 {
		o.MaxConversations = DefaultMaxConversations
	}
	if o.MaxMessages <= 0 {
		o.MaxMessages = DefaultMaxMessages
	}
	if o.MaxBlobBytes <= 0 {
		o.MaxBlobBytes = DefaultMaxBlobBytes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// snapshot 是保存在命名空间键下的整块数据，Conversations 按最近更新排序。
type snapshot struct {
	Conversations []model.Conversation `json:"conversations"`
}

func (s *snapshot) find(id string) int {
	for i := range s.Conversations {
		if s.Conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// Local 将全部对话序列化为一块数据保存在 BlobStore 中。ID 由客户端生成。
type Local struct {
	mu    sync.Mutex
	blobs BlobStore
	opts  LocalOptions
}

// NewLocal 创建本地存储。
func NewLocal(blobs BlobStore, opts LocalOptions) *Local {
	opts.applyDefaults()
	return &Local{blobs: blobs, opts: opts}
}

func (l *Local) ListConversations(ctx context.Context) ([]model.Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Summary, 0, len(snap.Conversations))
	for _, c := range snap.Conversations {
		out = append(out, c.Summary())
	}
	return out, nil
}

func (l *Local) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	conv := model.Conversation{
		ID:        model.NewConversationID(),
		Title:     title,
		UpdatedAt: l.opts.Now(),
	}
	snap.Conversations = append([]model.Conversation{conv}, snap.Conversations...)
	if err := l.save(ctx, snap); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (l *Local) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.find(conversationID)
	if i < 0 {
		return nil, ErrNotFound
	}
	msgs := snap.Conversations[i].Messages
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (l *Local) AppendMessage(ctx context.Context, conversationID string, msg model.Message) (*model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.find(conversationID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = model.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = l.opts.Now()
	}

	conv := &snap.Conversations[i]
	if conv.Title == "" && msg.Role == model.RoleUser {
		conv.Title = model.DeriveTitle(msg)
	}
	conv.Messages = append(conv.Messages, msg)
	if n := len(conv.Messages); n > l.opts.MaxMessages {
		conv.Messages = append([]model.Message(nil), conv.Messages[n-l.opts.MaxMessages:]...)
	}
	conv.Touch(l.opts.Now())

	if err := l.save(ctx, snap); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (l *Local) DeleteConversation(ctx context.Context, conversationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.load(ctx)
	if err != nil {
		return err
	}
	i := snap.find(conversationID)
	if i < 0 {
		return ErrNotFound
	}
	snap.Conversations = append(snap.Conversations[:i], snap.Conversations[i+1:]...)
	return l.save(ctx, snap)
}

func (l *Local) DeleteAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.blobs.Delete(ctx, l.opts.Namespace); err != nil {
		return fmt.Errorf("%w: failed to clear local store: %v", ErrTransport, err)
	}
	return nil
}

func (l *Local) load(ctx context.Context) (*snapshot, error) {
	data, err := l.blobs.Load(ctx, l.opts.Namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read local store: %v", ErrTransport, err)
	}
	snap := &snapshot{}
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode local store: %v", ErrTransport, err)
	}
	return snap, nil
}

// save 排序、淘汰超出上限的对话后整体写回。
func (l *Local) save(ctx context.Context, snap *snapshot) error {
	sort.SliceStable(snap.Conversations, func(i, j int) bool {
		return snap.Conversations[i].UpdatedAt.After(snap.Conversations[j].UpdatedAt)
	})
	if n := len(snap.Conversations); n > l.opts.MaxConversations {
		for _, evicted := range snap.Conversations[l.opts.MaxConversations:] {
			log.Infow("evicting conversation from local store", "conversationId", evicted.ID, "updatedAt", evicted.UpdatedAt)
		}
		snap.Conversations = snap.Conversations[:l.opts.MaxConversations]
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: failed to encode local store: %v", ErrTransport, err)
	}
	if len(data) > l.opts.MaxBlobBytes {
		return fmt.Errorf("%w: local storage quota exceeded (%d > %d bytes)", ErrTransport, len(data), l.opts.MaxBlobBytes)
	}
	if err := l.blobs.Save(ctx, l.opts.Namespace, data); err != nil {
		return fmt.Errorf("%w: failed to write local store: %v", ErrTransport, err)
	}
	return nil
}
