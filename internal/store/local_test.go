package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/model"
)

type tickingClock struct{ t time.Time }

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestLocal(t *testing.T, opts LocalOptions) *Local {
	t.Helper()
	blobs, err := OpenBoltBlobs(filepath.Join(t.TempDir(), "chatbot.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })
	if opts.Now == nil {
		clock := &tickingClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
		opts.Now = clock.Now
	}
	return NewLocal(blobs, opts)
}

func TestLocalConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t, LocalOptions{})

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	a, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)
	b, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = s.AppendMessage(ctx, a.ID, model.NewUserMessage("Kem chống nắng nào tốt?", nil))
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, a.ID, model.NewAssistantMessage("SPF 30 trở lên.", nil))
	require.NoError(t, err)

	list, err = s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID, "appending moves a conversation to the top")
	assert.Equal(t, "Kem chống nắng nào tốt?", list[0].Title)
	assert.Empty(t, list[1].Title)

	msgs, err := s.GetMessages(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	require.NoError(t, s.DeleteConversation(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteConversation(ctx, a.ID), ErrNotFound)
	_, err = s.GetMessages(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AppendMessage(ctx, a.ID, model.NewUserMessage("x", nil))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteAll(ctx))
	list, err = s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLocalTitleFromAttachmentOnlyMessage(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t, LocalOptions{})
	conv, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)

	img := &model.Attachment{MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	_, err = s.AppendMessage(ctx, conv.ID, model.NewUserMessage("", img))
	require.NoError(t, err)

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AttachmentTitle, list[0].Title)

	msgs, err := s.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, msgs[0].Attachment)
	assert.Equal(t, img.Data, msgs[0].Attachment.Data)
}

func TestLocalEvictsLeastRecentlyUpdated(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t, LocalOptions{MaxConversations: 50})

	var first string
	for i := 0; i < 51; i++ {
		conv, err := s.CreateConversation(ctx, fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		if i == 0 {
			first = conv.ID
		}
	}

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 50)
	assert.Equal(t, "c50", list[0].Title)
	for _, sum := range list {
		assert.NotEqual(t, first, sum.ID)
	}
}

func TestLocalKeepsMostRecentMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t, LocalOptions{MaxMessages: 3})
	conv, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.AppendMessage(ctx, conv.ID, model.NewUserMessage(fmt.Sprintf("m%d", i), nil))
		require.NoError(t, err)
	}

	msgs, err := s.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].Content)
	assert.Equal(t, "m4", msgs[2].Content)

	list, err := s.ListConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m0", list[0].Title, "title is derived once from the first user message")
}

func TestLocalQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t, LocalOptions{MaxBlobBytes: 4096})
	conv, err := s.CreateConversation(ctx, "")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, conv.ID, model.NewUserMessage(strings.Repeat("a", 8192), nil))
	assert.ErrorIs(t, err, ErrTransport)

	msgs, err := s.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "a rejected write leaves the stored snapshot untouched")
}

func TestLocalStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chatbot.bolt")

	blobs, err := OpenBoltBlobs(path)
	require.NoError(t, err)
	conv, err := NewLocal(blobs, LocalOptions{}).CreateConversation(ctx, "kept")
	require.NoError(t, err)
	require.NoError(t, blobs.Close())

	blobs, err = OpenBoltBlobs(path)
	require.NoError(t, err)
	defer blobs.Close()
	list, err := NewLocal(blobs, LocalOptions{}).ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, conv.ID, list[0].ID)
}
