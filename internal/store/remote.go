package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"chatbot-go/internal/model"
	"chatbot-go/pkg/apiclient"
	"chatbot-go/pkg/log"
)

// Remote 把对话的增删查委托给服务端 API。ID 永远由服务端分配。
type Remote struct {
	api *apiclient.Client
}

// NewRemote 创建远程存储。
func NewRemote(api *apiclient.Client) *Remote {
	return &Remote{api: api}
}

const conversationsPath = "/api/chat/conversations"

func conversationPath(id string) string {
	return conversationsPath + "/" + url.PathEscape(id)
}

func (r *Remote) ListConversations(ctx context.Context) ([]model.Summary, error) {
	var env apiclient.Envelope[[]model.Summary]
	if err := r.api.Do(ctx, http.MethodGet, conversationsPath, nil, &env); err != nil {
		return nil, mapError("list conversations", err)
	}
	return env.Data, nil
}

func (r *Remote) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	var env apiclient.Envelope[model.Conversation]
	in := map[string]string{"title": title}
	if err := r.api.Do(ctx, http.MethodPost, conversationsPath, in, &env); err != nil {
		return nil, mapError("create conversation", err)
	}
	if env.Data.ID == "" {
		return nil, fmt.Errorf("%w: create conversation: server returned no id", ErrTransport)
	}
	return &env.Data, nil
}

func (r *Remote) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var env apiclient.Envelope[[]model.Message]
	if err := r.api.Do(ctx, http.MethodGet, conversationPath(conversationID)+"/messages", nil, &env); err != nil {
		return nil, mapError("get messages", err)
	}
	return env.Data, nil
}

func (r *Remote) AppendMessage(ctx context.Context, conversationID string, msg model.Message) (*model.Message, error) {
	var env apiclient.Envelope[model.Message]
	if err := r.api.Do(ctx, http.MethodPost, conversationPath(conversationID)+"/messages", msg, &env); err != nil {
		return nil, mapError("append message", err)
	}
	return &env.Data, nil
}

func (r *Remote) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := r.api.Do(ctx, http.MethodDelete, conversationPath(conversationID), nil, nil); err != nil {
		return mapError("delete conversation", err)
	}
	return nil
}

// DeleteAll 服务端没有批量删除接口，逐个删除；单个失败只记录日志，不影响其他删除。
func (r *Remote) DeleteAll(ctx context.Context) error {
	summaries, err := r.ListConversations(ctx)
	if err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(4)
	for _, s := range summaries {
		id := s.ID
		g.Go(func() error {
			if err := r.DeleteConversation(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
				log.Warnw("failed to delete conversation", "conversationId", id, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func mapError(op string, err error) error {
	var se *apiclient.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
