package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatbot-go/internal/model"
)

func TestRenderAssistantWithAnnotation(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, false)

	c := 0.82
	msg := model.Message{
		Role:       model.RoleAssistant,
		Content:    "Giữ da sạch.",
		Annotation: model.NewAnnotation("Acne", &c),
		Timestamp:  time.Date(2026, 10, 19, 9, 5, 0, 0, time.Local),
	}
	term.RenderMessage(msg)

	text := out.String()
	assert.Contains(t, text, "[09:05] Trợ lý:")
	assert.Contains(t, text, "Acne")
	assert.Contains(t, text, "Độ tin cậy: 82.0%")
	assert.Less(t, strings.Index(text, "Độ tin cậy"), strings.Index(text, "Giữ da sạch."), "the annotation is rendered above the reply")
}

func TestRenderUserWithAttachment(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, false)

	term.RenderMessage(model.NewUserMessage("xem giúp", &model.Attachment{Name: "skin.png", MediaType: "image/png", Data: make([]byte, 2048)}))
	assert.Contains(t, out.String(), "Bạn: xem giúp")
	assert.Contains(t, out.String(), "skin.png (2.0 KB)")
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":    true,
		"Có\n":   true,
		"n\n":    false,
		"\n":     false,
		"yes":    true,
		"":       false,
		"nope\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader(input), &out, false)
		assert.Equal(t, want, term.Confirm("Xóa?"), "input %q", input)
		assert.Contains(t, out.String(), "Xóa? [y/N]")
	}
}

func TestRenderConversationListMarksCurrent(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out, false)

	term.RenderConversationList([]model.Summary{
		{ID: "a", Title: "Da khô", UpdatedAt: time.Now()},
		{ID: "b", UpdatedAt: time.Now()},
	}, "b")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  a"))
	assert.True(t, strings.HasPrefix(lines[1], "* b"))
	assert.Contains(t, lines[1], "Cuộc trò chuyện mới")
}
