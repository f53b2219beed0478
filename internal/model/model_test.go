package model

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"short text kept", Message{Content: "Cách trị mụn?"}, "Cách trị mụn?"},
		{"whitespace collapsed", Message{Content: "  da   khô \n quá "}, "da khô quá"},
		{"exactly thirty", Message{Content: strings.Repeat("a", 30)}, strings.Repeat("a", 30)},
		{"long text truncated", Message{Content: strings.Repeat("b", 45)}, strings.Repeat("b", 30) + "..."},
		{"wide runes count double", Message{Content: strings.Repeat("皮", 20)}, strings.Repeat("皮", 15) + "..."},
		{"attachment only", Message{Attachment: &Attachment{MediaType: "image/png"}}, AttachmentTitle},
		{"empty", Message{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.msg))
		})
	}
}

func TestNewMessageIDStrictlyIncreasing(t *testing.T) {
	prev, err := strconv.ParseInt(NewMessageID(), 10, 64)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		next, err := strconv.ParseInt(NewMessageID(), 10, 64)
		require.NoError(t, err)
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	att := &Attachment{MediaType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}}

	parsed, err := ParseDataURL(att.DataURL())
	require.NoError(t, err)
	assert.Equal(t, att.MediaType, parsed.MediaType)
	assert.Equal(t, att.Data, parsed.Data)

	none, err := ParseDataURL("")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseDataURL("not-a-data-url")
	assert.Error(t, err)
	_, err = ParseDataURL("data:text/plain,hello")
	assert.Error(t, err)
}

func TestDetectMediaType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", DetectMediaType(png))
	assert.Equal(t, "text/plain", DetectMediaType([]byte("hello")))
}

func TestAnnotation(t *testing.T) {
	assert.Nil(t, NewAnnotation("  ", nil))

	c := 0.82
	ann := NewAnnotation("", &c)
	require.NotNil(t, ann)
	assert.Equal(t, "Độ tin cậy: 82.0%", ann.ConfidenceText())

	labelOnly := NewAnnotation("Acne", nil)
	require.NotNil(t, labelOnly)
	assert.Empty(t, labelOnly.ConfidenceText())
}

func TestConversationTouchNeverGoesBack(t *testing.T) {
	c := Conversation{}
	now := c.UpdatedAt.AddDate(2026, 0, 0)
	c.Touch(now)
	c.Touch(now.AddDate(0, 0, -1))
	assert.Equal(t, now, c.UpdatedAt)
}
