package validator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-go/internal/model"
)

func image(mediaType string, size int) *model.Attachment {
	return &model.Attachment{MediaType: mediaType, Data: bytes.Repeat([]byte{1}, size)}
}

func TestValidate(t *testing.T) {
	v := New(0)

	tests := []struct {
		name       string
		text       string
		attachment *model.Attachment
		want       Reason // empty means accepted
	}{
		{"text only", "Cách trị mụn?", nil, ""},
		{"image only", "", image("image/png", 10), ""},
		{"text and image", "ảnh da", image("image/jpeg", 10), ""},
		{"image at ceiling", "", image("image/webp", int(MaxAttachmentBytes)), ""},
		{"empty", "", nil, EmptyMessage},
		{"whitespace only", " \t\n ", nil, EmptyMessage},
		{"not an image", "hi", image("application/pdf", 10), UnsupportedMediaType},
		{"bare image prefix", "", image("image/", 10), UnsupportedMediaType},
		{"over ceiling", "", image("image/png", int(MaxAttachmentBytes)+1), AttachmentTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.text, tt.attachment)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var rej *Rejection
			require.True(t, errors.As(err, &rej), "expected rejection, got %v", err)
			assert.Equal(t, tt.want, rej.Reason)
			assert.NotEmpty(t, rej.UserMessage())
		})
	}
}

func TestCustomCeiling(t *testing.T) {
	v := New(4)
	assert.NoError(t, v.ValidateAttachment(image("image/png", 4)))

	var rej *Rejection
	require.ErrorAs(t, v.ValidateAttachment(image("image/png", 5)), &rej)
	assert.Equal(t, AttachmentTooLarge, rej.Reason)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("IMAGE/PNG"))
	assert.True(t, IsImage(" image/gif "))
	assert.False(t, IsImage("text/plain"))
	assert.False(t, IsImage(""))
}
