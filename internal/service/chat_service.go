package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatbot-go/internal/model"
	"chatbot-go/internal/validator"
	"chatbot-go/pkg/llm"
	"chatbot-go/pkg/log"
	"chatbot-go/pkg/tasks"
)

// historyWindow 是拼入提示词的最近消息条数。
const historyWindow = 20

// ErrEmptyReply 表示模型没有生成任何内容。
var ErrEmptyReply = errors.New("empty reply from model")

// AttachmentArchiver 归档用户上传的图片，返回对象名。
type AttachmentArchiver interface {
	Archive(ctx context.Context, ownerID string, att *model.Attachment) (string, error)
}

// ExchangePublisher 发布问答审计事件。
type ExchangePublisher interface {
	PublishExchange(ctx context.Context, record tasks.ExchangeRecord) error
}

// ChatService 定义了一次问答交换的接口。
type ChatService interface {
	Reply(ctx context.Context, ownerID string, req model.ExchangeRequest) (*model.ExchangeResponse, error)
}

// ChatOptions 是 ChatService 的可选协作者，nil 表示不启用。
type ChatOptions struct {
	SystemPrompt string
	Generation   *llm.GenerationParams
	Archiver     AttachmentArchiver
	Publisher    ExchangePublisher
	Validator    *validator.Validator
}

type chatService struct {
	llmClient     llm.Client
	conversations ConversationService
	opts          ChatOptions
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client, conversations ConversationService, opts ChatOptions) ChatService {
	if opts.Validator == nil {
		opts.Validator = validator.New(0)
	}
	return &chatService{
		llmClient:     llmClient,
		conversations: conversations,
		opts:          opts,
	}
}

// Reply 校验请求、拼装历史并调用模型生成回复。
// 请求本身不合法时返回 Success=false 的响应而不是 error；error 只表示服务端故障。
func (s *chatService) Reply(ctx context.Context, ownerID string, req model.ExchangeRequest) (*model.ExchangeResponse, error) {
	att, err := model.ParseDataURL(req.Image)
	if err != nil {
		return &model.ExchangeResponse{Success: false, Error: "invalid image payload"}, nil
	}
	if err := s.opts.Validator.Validate(req.Message, att); err != nil {
		return &model.ExchangeResponse{Success: false, Error: err.Error()}, nil
	}

	var imageObject string
	if att != nil && s.opts.Archiver != nil {
		imageObject, err = s.opts.Archiver.Archive(ctx, ownerID, att)
		if err != nil {
			// 归档失败不影响回答
			log.Warnw("failed to archive attachment", "ownerId", ownerID, "error", err)
		}
	}

	messages := s.composeMessages(ctx, ownerID, req, att != nil)

	answer := &answerCollector{}
	if err := s.llmClient.StreamChatMessages(ctx, messages, s.opts.Generation, answer); err != nil {
		return nil, err
	}
	reply := strings.TrimSpace(answer.String())
	if reply == "" {
		return nil, ErrEmptyReply
	}

	resp := &model.ExchangeResponse{Success: true, Response: reply}
	s.publish(ctx, tasks.ExchangeRecord{
		OwnerID:        ownerID,
		ConversationID: req.ConversationID,
		InputText:      req.Message,
		ImageObject:    imageObject,
		ResponseText:   reply,
		OccurredAt:     time.Now(),
	})
	return resp, nil
}

func (s *chatService) composeMessages(ctx context.Context, ownerID string, req model.ExchangeRequest, hasImage bool) []llm.Message {
	msgs := make([]llm.Message, 0, historyWindow+2)
	if s.opts.SystemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: s.opts.SystemPrompt})
	}

	if req.ConversationID != "" && s.conversations != nil {
		history, err := s.conversations.Messages(ctx, ownerID, req.ConversationID)
		if err != nil {
			log.Warnw("failed to load conversation history", "conversationId", req.ConversationID, "error", err)
		}
		// 客户端先持久化用户消息再请求回复，本轮问题可能已在历史末尾
		if n := len(history); n > 0 && history[n-1].Role == model.RoleUser && history[n-1].Content == req.Message {
			history = history[:n-1]
		}
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		for _, m := range history {
			if m.Content == "" {
				continue
			}
			msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
		}
	}

	input := req.Message
	if hasImage {
		input = strings.TrimSpace(input + "\n[Người dùng đã gửi kèm một hình ảnh]")
	}
	return append(msgs, llm.Message{Role: "user", Content: input})
}

func (s *chatService) publish(ctx context.Context, record tasks.ExchangeRecord) {
	if s.opts.Publisher == nil {
		return
	}
	if err := s.opts.Publisher.PublishExchange(ctx, record); err != nil {
		log.Warnw("failed to publish exchange record", "conversationId", record.ConversationID, "error", err)
	}
}

// answerCollector 捕获模型流式输出的完整答案。
type answerCollector struct {
	strings.Builder
}

func (a *answerCollector) WriteChunk(chunk string) error {
	a.WriteString(chunk)
	return nil
}
