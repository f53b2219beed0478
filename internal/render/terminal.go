// Package render 是会话管理器在终端上的渲染端。
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"chatbot-go/internal/model"
)

const (
	userLabel      = "Bạn"
	assistantLabel = "Trợ lý"
	typingText     = "Trợ lý đang trả lời..."
	wordWrap       = 80
)

// Terminal 把消息写到 out，并从 in 读取确认回答。
// markdown 为 true 时助手回复经 glamour 渲染，否则原样输出。
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
	md  *glamour.TermRenderer
}

// NewTerminal 创建终端渲染端。
func NewTerminal(in io.Reader, out io.Writer, markdown bool) *Terminal {
	t := &Terminal{out: out, in: bufio.NewReader(in)}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrap),
		)
		if err == nil {
			t.md = md
		}
	}
	return t
}

// Reader 返回与 Confirm 共享的输入流，REPL 必须从这里读取命令。
func (t *Terminal) Reader() *bufio.Reader {
	return t.in
}

func (t *Terminal) RenderMessage(msg model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	clock := model.Clock(msg.Timestamp)
	if msg.Role == model.RoleUser {
		fmt.Fprintf(t.out, "[%s] %s: %s\n", clock, userLabel, msg.Content)
		if msg.Attachment != nil {
			fmt.Fprintf(t.out, "        %s\n", describeAttachment(msg.Attachment))
		}
		return
	}

	fmt.Fprintf(t.out, "[%s] %s:\n", clock, assistantLabel)
	if ann := msg.Annotation; ann != nil {
		if ann.Label != "" {
			fmt.Fprintf(t.out, "  ┃ 🔬 %s\n", ann.Label)
		}
		if text := ann.ConfidenceText(); text != "" {
			fmt.Fprintf(t.out, "  ┃ %s\n", text)
		}
	}
	fmt.Fprintln(t.out, t.markdown(msg.Content))
}

func (t *Terminal) ClearTranscript() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, strings.Repeat("─", wordWrap/2))
}

func (t *Terminal) ShowIndicator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, typingText)
}

// HideIndicator 在行式终端上无事可做，回复本身会紧接在提示之后出现。
func (t *Terminal) HideIndicator() {}

func (t *Terminal) RenderConversationList(summaries []model.Summary, currentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(summaries) == 0 {
		fmt.Fprintln(t.out, "(chưa có cuộc trò chuyện)")
		return
	}
	for _, s := range summaries {
		marker := " "
		if s.ID == currentID {
			marker = "*"
		}
		title := s.Title
		if title == "" {
			title = "Cuộc trò chuyện mới"
		}
		fmt.Fprintf(t.out, "%s %-24s %s  %s\n", marker, s.ID, runewidth.FillRight(title, 34), s.UpdatedAt.Local().Format("02/01 15:04"))
	}
}

func (t *Terminal) ShowAttachmentPreview(att *model.Attachment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if att == nil {
		fmt.Fprintln(t.out, "(đã bỏ ảnh đính kèm)")
		return
	}
	fmt.Fprintf(t.out, "(ảnh đính kèm) %s\n", describeAttachment(att))
}

// ClearComposer 无事可做：输入行在回车时已被读取。
func (t *Terminal) ClearComposer() {}

func (t *Terminal) Notify(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "! %s\n", text)
}

// Confirm 读取一行回答，只有 y/yes/c/có 视为确认。
func (t *Terminal) Confirm(prompt string) bool {
	t.mu.Lock()
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	t.mu.Unlock()

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "c", "có":
		return true
	default:
		return false
	}
}

func (t *Terminal) markdown(content string) string {
	if t.md == nil {
		return content
	}
	out, err := t.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func describeAttachment(att *model.Attachment) string {
	name := att.Name
	if name == "" {
		name = att.MediaType
	}
	return fmt.Sprintf("📷 %s (%.1f KB)", name, float64(att.Size())/1024)
}
