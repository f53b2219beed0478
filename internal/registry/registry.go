// Package registry 是会话管理器持有的对话内存缓存，与持久化适配器保持同步。
package registry

import (
	"context"
	"sort"
	"sync"

	"chatbot-go/internal/model"
)

// Lister 是 Refresh 所需的持久化能力。
type Lister interface {
	ListConversations(ctx context.Context) ([]model.Summary, error)
}

// Registry 缓存已知对话的摘要与已加载的消息，并记录当前对话。
// 只有会话管理器写入；读取可以来自渲染等其他协程。
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*model.Conversation
	current string
}

// New 创建一个空的 Registry。
func New() *Registry {
	return &Registry{entries: make(map[string]*model.Conversation)}
}

// Refresh 用持久化层的列表替换缓存。仍然存在的对话保留已加载的消息；
// 当前对话若已不存在则改选最近更新的一个，列表为空时没有当前对话。
// 出错时缓存保持不变。
func (r *Registry) Refresh(ctx context.Context, src Lister) error {
	summaries, err := src.ListConversations(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make(map[string]*model.Conversation, len(summaries))
	order := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if _, dup := entries[s.ID]; dup {
			continue
		}
		conv := &model.Conversation{ID: s.ID, Title: s.Title, UpdatedAt: s.UpdatedAt}
		if old, ok := r.entries[s.ID]; ok {
			conv.Messages = old.Messages
			// 适配器的时间戳可能落后于乐观追加
			conv.Touch(old.UpdatedAt)
		}
		entries[s.ID] = conv
		order = append(order, s.ID)
	}
	r.entries = entries
	r.order = order

	if _, ok := r.entries[r.current]; !ok {
		r.current = ""
		if len(r.order) > 0 {
			r.current = r.order[0]
		}
	}
	return nil
}

// Upsert 插入或替换一个对话；Messages 为 nil 时保留已缓存的消息。
func (r *Registry) Upsert(conv model.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := conv
	if old, ok := r.entries[c.ID]; ok {
		if c.Messages == nil {
			c.Messages = old.Messages
		}
	} else {
		r.order = append(r.order, c.ID)
	}
	c.Messages = cloneMessages(c.Messages)
	r.entries[c.ID] = &c
	r.sortLocked()
}

// Remove 移除一个对话，返回它是否存在。移除当前对话会清空当前选择。
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.current == id {
		r.current = ""
	}
	return true
}

// Get 返回对话的副本。
func (r *Registry) Get(id string) (model.Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.entries[id]
	if !ok {
		return model.Conversation{}, false
	}
	out := *c
	out.Messages = cloneMessages(c.Messages)
	return out, true
}

// AppendMessage 把消息追加到已缓存的对话末尾并推进其更新时间。
func (r *Registry) AppendMessage(id string, msg model.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.entries[id]
	if !ok {
		return false
	}
	if c.Title == "" && msg.Role == model.RoleUser {
		c.Title = model.DeriveTitle(msg)
	}
	c.Messages = append(c.Messages, msg)
	c.Touch(msg.Timestamp)
	r.sortLocked()
	return true
}

// SetMessages 用持久化层读取的消息替换缓存。
func (r *Registry) SetMessages(id string, msgs []model.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.entries[id]
	if !ok {
		return false
	}
	c.Messages = cloneMessages(msgs)
	return true
}

// List 返回对话摘要，最近更新的在前。
func (r *Registry) List() []model.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Summary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Summary())
	}
	return out
}

// IDs 返回全部已知对话的 ID。
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len 返回缓存的对话数。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear 清空缓存与当前选择。
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*model.Conversation)
	r.order = nil
	r.current = ""
}

// Current 返回当前对话 ID，没有时为空串。
func (r *Registry) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SetCurrent 选择一个已缓存的对话为当前对话；id 未知时返回 false。
func (r *Registry) SetCurrent(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	r.current = id
	return true
}

func (r *Registry) sortLocked() {
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.entries[r.order[i]].UpdatedAt.After(r.entries[r.order[j]].UpdatedAt)
	})
}

func cloneMessages(msgs []model.Message) []model.Message {
	if msgs == nil {
		return nil
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
