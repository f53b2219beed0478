package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/model"
	"chatbot-go/internal/repository"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestConversationService() *conversationService {
	clock := &stepClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	return &conversationService{repo: repository.NewMemoryConversationRepository(), now: clock.now}
}

func TestConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationService()

	first, err := s.Create(ctx, "owner", "")
	require.NoError(t, err)
	second, err := s.Create(ctx, "owner", "Explicit")
	require.NoError(t, err)

	list, err := s.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recently updated first")

	question := model.NewUserMessage("Cách trị mụn trứng cá hiệu quả nhất hiện nay là gì?", nil)
	committed, err := s.Append(ctx, "owner", first.ID, question)
	require.NoError(t, err)
	assert.NotEmpty(t, committed.ID)

	list, err = s.List(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID, "appending moves the conversation to the top")
	assert.Equal(t, model.DeriveTitle(question), list[0].Title)
	assert.Equal(t, "Explicit", list[1].Title)

	_, err = s.Append(ctx, "owner", first.ID, model.NewAssistantMessage("Rửa mặt hai lần mỗi ngày.", nil))
	require.NoError(t, err)

	msgs, err := s.Messages(ctx, "owner", first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	require.NoError(t, s.Delete(ctx, "owner", first.ID))
	assert.ErrorIs(t, s.Delete(ctx, "owner", first.ID), ErrConversationNotFound)
	_, err = s.Messages(ctx, "owner", first.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationsAreScopedByOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationService()

	conv, err := s.Create(ctx, "alice", "")
	require.NoError(t, err)

	list, err := s.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Messages(ctx, "bob", conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "bob", conv.ID), ErrConversationNotFound)
}

func TestAppendRejectsInvalidMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationService()
	conv, err := s.Create(ctx, "", "")
	require.NoError(t, err)

	_, err = s.Append(ctx, "", conv.ID, model.Message{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = s.Append(ctx, "", conv.ID, model.Message{Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = s.Append(ctx, "", "not-an-id", model.NewUserMessage("hi", nil))
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAssistantAnnotationSurvivesStorage(t *testing.T) {
	ctx := context.Background()
	s := newTestConversationService()
	conv, err := s.Create(ctx, "", "")
	require.NoError(t, err)

	c := 0.82
	_, err = s.Append(ctx, "", conv.ID, model.NewAssistantMessage("reply", model.NewAnnotation("Acne", &c)))
	require.NoError(t, err)

	msgs, err := s.Messages(ctx, "", conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Annotation)
	assert.Equal(t, "Acne", msgs[0].Annotation.Label)
	assert.InDelta(t, 0.82, *msgs[0].Annotation.Confidence, 1e-9)
}
