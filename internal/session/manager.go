package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"chatbot-go/internal/config"
	"chatbot-go/internal/exchange"
	"chatbot-go/internal/model"
	"chatbot-go/internal/registry"
	"chatbot-go/internal/store"
	"chatbot-go/internal/validator"
	"chatbot-go/pkg/log"
)

var (
	// ErrBusy 表示另一个操作（通常是一次发送）尚未完成，本次请求被拒绝而不是排队。
	ErrBusy = errors.New("session busy")
	// ErrDeclined 表示用户没有确认删除。
	ErrDeclined = errors.New("not confirmed")
	// ErrUnknownConversation 表示选择的对话不存在。
	ErrUnknownConversation = errors.New("unknown conversation")
)

// deleteAllConcurrency 限制批量删除时同时进行的删除请求数。
const deleteAllConcurrency = 4

// Options 是会话管理器的可选配置，零值使用默认文案与默认校验器。
type Options struct {
	WelcomeMessage  string
	FallbackMessage string
	Validator       *validator.Validator
}

// Manager 拥有当前对话的选择、待发送附件与发送状态。
// 修改状态的操作互斥：操作进行中再发起的操作返回 ErrBusy，不改变任何状态。
type Manager struct {
	store     store.Store
	exchange  exchange.Client
	gateway   Gateway
	registry  *registry.Registry
	validator *validator.Validator
	welcome   string
	fallback  string

	op sync.Mutex

	mu         sync.RWMutex
	state      State
	attachment *model.Attachment
}

// NewManager 创建会话管理器。调用 Start 之前没有当前对话。
func NewManager(st store.Store, ex exchange.Client, gw Gateway, opts Options) *Manager {
	if opts.WelcomeMessage == "" {
		opts.WelcomeMessage = config.DefaultWelcomeMessage
	}
	if opts.FallbackMessage == "" {
		opts.FallbackMessage = config.DefaultFallbackMessage
	}
	if opts.Validator == nil {
		opts.Validator = validator.New(0)
	}
	return &Manager{
		store:     st,
		exchange:  ex,
		gateway:   gw,
		registry:  registry.New(),
		validator: opts.Validator,
		welcome:   opts.WelcomeMessage,
		fallback:  opts.FallbackMessage,
	}
}

// State 返回当前状态。
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentID 返回当前对话 ID。
func (m *Manager) CurrentID() string {
	return m.registry.Current()
}

// Conversations 返回已知对话的摘要，最近更新的在前。
func (m *Manager) Conversations() []model.Summary {
	return m.registry.List()
}

// Attachment 返回已暂存的附件。
func (m *Manager) Attachment() *model.Attachment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attachment
}

// Start 同步对话列表并建立当前对话：没有对话时新建并渲染欢迎语，否则加载最近的一个。
func (m *Manager) Start(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if err := m.registry.Refresh(ctx, m.store); err != nil {
		log.Warnw("failed to load conversation list", "error", err)
	}
	m.settle(m.establish(ctx))
	return nil
}

// Select 切换到一个已有对话并渲染其全部消息。
func (m *Manager) Select(ctx context.Context, id string) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if _, ok := m.registry.Get(id); !ok {
		if err := m.registry.Refresh(ctx, m.store); err != nil {
			log.Warnw("failed to load conversation list", "error", err)
		}
		if _, ok := m.registry.Get(id); !ok {
			return ErrUnknownConversation
		}
	}

	err := m.show(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		m.registry.Remove(id)
		m.renderList()
		return ErrUnknownConversation
	}
	m.settle(err)
	return nil
}

// NewConversation 总是新建一个对话并设为当前对话。
func (m *Manager) NewConversation(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	m.settle(m.create(ctx))
	return nil
}

// StageAttachment 校验并暂存一张图片。校验失败时提示原因，已暂存的附件不受影响。
func (m *Manager) StageAttachment(att *model.Attachment) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if att == nil {
		return nil
	}
	if err := m.validator.ValidateAttachment(att); err != nil {
		m.reject(err)
		return err
	}

	m.mu.Lock()
	m.attachment = att
	m.state = Composing
	m.mu.Unlock()
	m.gateway.ShowAttachmentPreview(att)
	return nil
}

// RemoveAttachment 丢弃已暂存的附件。
func (m *Manager) RemoveAttachment() error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	m.clearAttachment()
	m.setState(Idle)
	return nil
}

// Suggest 发送主题对应的快捷问题。
func (m *Manager) Suggest(ctx context.Context, topic string) error {
	return m.Send(ctx, SuggestionText(topic))
}

// Send 运行发送流程：校验、乐观渲染、交换、回写。
// 只有校验拒绝与 ErrBusy 会返回给调用方；存储与交换的失败在这里消化，
// 交换失败时以助手身份渲染固定的兜底回复。
func (m *Manager) Send(ctx context.Context, text string) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	att := m.Attachment()
	if err := m.validator.Validate(text, att); err != nil {
		m.reject(err)
		return err
	}
	defer m.setState(Idle)

	convID := m.registry.Current()
	if convID == "" {
		if err := m.establish(ctx); err != nil {
			// 没有对话也照常交换，只是不持久化
			log.Warnw("failed to establish conversation before send", "error", err)
		}
		convID = m.registry.Current()
	}

	userMsg := model.NewUserMessage(strings.TrimSpace(text), att)
	m.gateway.RenderMessage(userMsg)
	m.gateway.ClearComposer()
	m.clearAttachment()
	m.setState(Sending)
	m.gateway.ShowIndicator()
	committed := m.persist(ctx, convID, userMsg)

	resp, err := m.exchange.Send(ctx, model.ExchangeRequest{
		Message:        userMsg.Content,
		Image:          att.DataURL(),
		ConversationID: convID,
	})
	m.gateway.HideIndicator()
	if err != nil {
		log.Warnw("exchange failed", "conversationId", convID, "error", err)
		m.gateway.RenderMessage(model.NewAssistantMessage(m.fallback, nil))
		return nil
	}

	reply := model.NewAssistantMessage(resp.Response, resp.Annotation())
	m.gateway.RenderMessage(reply)
	if committed {
		// 用户消息未落库时不写入回复，避免存储中出现孤立的回复
		m.persist(ctx, convID, reply)
	}

	if err := m.registry.Refresh(ctx, m.store); err != nil {
		log.Warnw("failed to refresh conversation list after send", "conversationId", convID, "error", err)
	}
	m.renderList()
	return nil
}

// Delete 经确认后删除一个对话。删除的是当前对话时重新建立当前对话。
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if !m.gateway.Confirm(confirmDelete) {
		return ErrDeclined
	}

	wasCurrent := id == m.registry.Current()
	err := m.store.DeleteConversation(ctx, id)
	deleted := err == nil || errors.Is(err, store.ErrNotFound)
	if deleted {
		m.registry.Remove(id)
	} else {
		log.Warnw("failed to delete conversation", "conversationId", id, "error", err)
		m.gateway.Notify(noticeDeleteFailed)
	}

	if err := m.registry.Refresh(ctx, m.store); err != nil {
		log.Warnw("failed to refresh conversation list after delete", "error", err)
	}
	if deleted && wasCurrent {
		m.settle(m.establish(ctx))
		return nil
	}
	m.renderList()
	return nil
}

// ClearCurrentChat 经确认后删除当前对话并开始一个新对话。
func (m *Manager) ClearCurrentChat(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if !m.gateway.Confirm(confirmClearChat) {
		return ErrDeclined
	}

	if id := m.registry.Current(); id != "" {
		err := m.store.DeleteConversation(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warnw("failed to delete conversation", "conversationId", id, "error", err)
			m.gateway.Notify(noticeDeleteFailed)
			return nil
		}
		m.registry.Remove(id)
	}
	m.settle(m.create(ctx))
	return nil
}

// DeleteAll 经确认后删除全部已知对话，然后新建一个对话。
// 各删除互不依赖，单个失败只记录日志；缓存无论如何都会清空。
func (m *Manager) DeleteAll(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()

	if !m.gateway.Confirm(confirmDeleteAll) {
		return ErrDeclined
	}

	var g errgroup.Group
	g.SetLimit(deleteAllConcurrency)
	for _, id := range m.registry.IDs() {
		g.Go(func() error {
			err := m.store.DeleteConversation(ctx, id)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Warnw("failed to delete conversation", "conversationId", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.registry.Clear()
	m.gateway.ClearTranscript()
	m.renderList()
	m.settle(m.create(ctx))
	return nil
}

// establish 让当前对话（没有时取最近的一个）可见；没有任何对话时新建。
// 加载时发现对话已被删除则改用下一个。
func (m *Manager) establish(ctx context.Context) error {
	if ids := m.registry.IDs(); m.registry.Current() == "" && len(ids) > 0 {
		m.registry.SetCurrent(ids[0])
	}
	for id := m.registry.Current(); id != ""; id = m.registry.Current() {
		err := m.show(ctx, id)
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		m.registry.Remove(id)
		if ids := m.registry.IDs(); len(ids) > 0 {
			m.registry.SetCurrent(ids[0])
		}
	}
	return m.create(ctx)
}

// create 新建对话，设为当前对话并渲染欢迎语。欢迎语不持久化。
func (m *Manager) create(ctx context.Context) error {
	conv, err := m.store.CreateConversation(ctx, "")
	if err != nil {
		return err
	}
	conv.Messages = []model.Message{}
	m.registry.Upsert(*conv)
	m.registry.SetCurrent(conv.ID)

	m.gateway.ClearTranscript()
	m.gateway.RenderMessage(model.NewAssistantMessage(m.welcome, nil))
	m.renderList()
	return nil
}

// show 读取对话消息并按顺序渲染。
func (m *Manager) show(ctx context.Context, id string) error {
	msgs, err := m.store.GetMessages(ctx, id)
	if err != nil {
		return err
	}
	m.registry.SetMessages(id, msgs)
	m.registry.SetCurrent(id)

	m.gateway.ClearTranscript()
	for _, msg := range msgs {
		m.gateway.RenderMessage(msg)
	}
	m.renderList()
	return nil
}

// persist 先写入存储，成功后把存储返回的消息放进缓存，返回是否已落库。
// 存储失败只记录日志，缓存不收录未落库的消息。
func (m *Manager) persist(ctx context.Context, convID string, msg model.Message) bool {
	if convID == "" {
		return false
	}
	saved, err := m.store.AppendMessage(ctx, convID, msg)
	if err != nil {
		log.Warnw("failed to persist message", "conversationId", convID, "role", msg.Role, "error", err)
		return false
	}
	if saved != nil {
		msg = *saved
	}
	m.registry.AppendMessage(convID, msg)
	return true
}

// settle 根据建立对话的结果设置状态。
func (m *Manager) settle(err error) {
	if err != nil {
		log.Errorw("failed to establish current conversation", "error", err)
		m.gateway.Notify(noticeLoadFailed)
		m.setState(Error)
		return
	}
	if m.Attachment() != nil {
		m.setState(Composing)
		return
	}
	m.setState(Idle)
}

func (m *Manager) reject(err error) {
	var rejection *validator.Rejection
	if errors.As(err, &rejection) {
		m.gateway.Notify(rejection.UserMessage())
		return
	}
	m.gateway.Notify(err.Error())
}

func (m *Manager) clearAttachment() {
	m.mu.Lock()
	had := m.attachment != nil
	m.attachment = nil
	m.mu.Unlock()
	if had {
		m.gateway.ShowAttachmentPreview(nil)
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) renderList() {
	m.gateway.RenderConversationList(m.registry.List(), m.registry.Current())
}
