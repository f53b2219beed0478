package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/handler"
	"chatbot-go/internal/model"
	"chatbot-go/internal/repository"
	"chatbot-go/internal/service"
	"chatbot-go/pkg/apiclient"
	"chatbot-go/pkg/token"
)

type nopChat struct{}

func (nopChat) Reply(context.Context, string, model.ExchangeRequest) (*model.ExchangeResponse, error) {
	return &model.ExchangeResponse{Success: true, Response: "ok"}, nil
}

func newTestRemote(t *testing.T, jwt *token.JWTManager) (*Remote, *apiclient.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(handler.NewRouter(handler.RouterDeps{
		Conversations: service.NewConversationService(repository.NewMemoryConversationRepository()),
		Chat:          nopChat{},
		JWT:           jwt,
	}))
	t.Cleanup(srv.Close)
	api := apiclient.New(srv.URL, "", srv.Client())
	return NewRemote(api), api
}

func TestRemoteConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRemote(t, nil)

	conv, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)

	sent := model.NewUserMessage("Bị dị ứng da nên làm gì?", nil)
	committed, err := s.AppendMessage(ctx, conv.ID, sent)
	require.NoError(t, err)
	assert.Equal(t, sent.Content, committed.Content)

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bị dị ứng da nên làm gì?", list[0].Title)

	msgs, err := s.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))
	assert.ErrorIs(t, s.DeleteConversation(ctx, conv.ID), ErrNotFound)
	_, err = s.GetMessages(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoteDeleteAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRemote(t, nil)
	for i := 0; i < 5; i++ {
		_, err := s.CreateConversation(ctx, "")
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteAll(ctx))
	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRemoteTransportErrors(t *testing.T) {
	ctx := context.Background()
	s, api := newTestRemote(t, token.NewJWTManager("secret", 1))

	_, err := s.ListConversations(ctx)
	assert.ErrorIs(t, err, ErrTransport, "401 is a transport failure")

	_, err = api.GuestToken(ctx)
	require.NoError(t, err)
	_, err = s.ListConversations(ctx)
	assert.NoError(t, err)

	dead := NewRemote(apiclient.New("http://127.0.0.1:1", "", &http.Client{}))
	_, err = dead.CreateConversation(ctx, "")
	assert.ErrorIs(t, err, ErrTransport)
}
