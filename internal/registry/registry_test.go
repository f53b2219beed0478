package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/model"
)

type listerFunc func(ctx context.Context) ([]model.Summary, error)

func (f listerFunc) ListConversations(ctx context.Context) ([]model.Summary, error) { return f(ctx) }

func staticList(summaries ...model.Summary) Lister {
	return listerFunc(func(context.Context) ([]model.Summary, error) { return summaries, nil })
}

var base = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func summary(id string, minutes int) model.Summary {
	return model.Summary{ID: id, Title: id, UpdatedAt: base.Add(time.Duration(minutes) * time.Minute)}
}

func TestRefreshSelectsMostRecentWhenNoCurrent(t *testing.T) {
	r := New()
	require.NoError(t, r.Refresh(context.Background(), staticList(summary("b", 2), summary("a", 1))))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "b", r.Current())
	assert.Equal(t, []string{"b", "a"}, r.IDs())
}

func TestRefreshPreservesCurrentAndMessages(t *testing.T) {
	ctx := context.Background()
	r := New()
	require.NoError(t, r.Refresh(ctx, staticList(summary("b", 2), summary("a", 1))))
	require.True(t, r.SetCurrent("a"))
	require.True(t, r.SetMessages("a", []model.Message{model.NewUserMessage("hi", nil)}))

	require.NoError(t, r.Refresh(ctx, staticList(summary("c", 3), summary("b", 2), summary("a", 1))))
	assert.Equal(t, "a", r.Current())
	conv, ok := r.Get("a")
	require.True(t, ok)
	assert.Len(t, conv.Messages, 1)

	require.NoError(t, r.Refresh(ctx, staticList(summary("c", 3))))
	assert.Equal(t, "c", r.Current(), "a vanished current falls back to the most recent")
}

func TestRefreshErrorKeepsCache(t *testing.T) {
	ctx := context.Background()
	r := New()
	require.NoError(t, r.Refresh(ctx, staticList(summary("a", 1))))

	failing := listerFunc(func(context.Context) ([]model.Summary, error) { return nil, errors.New("offline") })
	assert.Error(t, r.Refresh(ctx, failing))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "a", r.Current())
}

func TestAppendMessageReordersAndDerivesTitle(t *testing.T) {
	r := New()
	r.Upsert(model.Conversation{ID: "old", UpdatedAt: base})
	r.Upsert(model.Conversation{ID: "new", UpdatedAt: base.Add(time.Minute)})
	assert.Equal(t, []string{"new", "old"}, r.IDs())

	msg := model.Message{ID: "1", Role: model.RoleUser, Content: "Da khô", Timestamp: base.Add(time.Hour)}
	require.True(t, r.AppendMessage("old", msg))
	assert.Equal(t, []string{"old", "new"}, r.IDs())

	conv, _ := r.Get("old")
	assert.Equal(t, "Da khô", conv.Title)
	assert.Equal(t, base.Add(time.Hour), conv.UpdatedAt)

	assert.False(t, r.AppendMessage("missing", msg))
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	r.Upsert(model.Conversation{ID: "a", Messages: []model.Message{{ID: "1", Content: "x"}}})

	conv, _ := r.Get("a")
	conv.Messages[0].Content = "mutated"

	again, _ := r.Get("a")
	assert.Equal(t, "x", again.Messages[0].Content)
}

func TestRemoveAndClear(t *testing.T) {
	r := New()
	r.Upsert(model.Conversation{ID: "a", UpdatedAt: base})
	r.Upsert(model.Conversation{ID: "b", UpdatedAt: base})
	require.True(t, r.SetCurrent("a"))

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	assert.Empty(t, r.Current())
	assert.False(t, r.SetCurrent("a"))

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.List())
}
