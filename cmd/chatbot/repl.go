package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"chatbot-go/internal/model"
	"chatbot-go/internal/render"
	"chatbot-go/internal/session"
	"chatbot-go/internal/validator"
	"chatbot-go/pkg/log"
)

const helpText = `Lệnh:
  /new              bắt đầu cuộc trò chuyện mới
  /list             danh sách cuộc trò chuyện
  /open <id>        mở một cuộc trò chuyện
  /delete <id>      xóa một cuộc trò chuyện
  /clear            xóa cuộc trò chuyện hiện tại
  /clearall         xóa tất cả lịch sử
  /image <path>     đính kèm ảnh
  /remove           bỏ ảnh đính kèm
  /suggest <chủ đề> gửi câu hỏi gợi ý (%s)
  /help             hiển thị trợ giúp
  /quit             thoát
Mọi dòng khác được gửi như một tin nhắn.
`

func runChat(ctx context.Context, flags *rootFlags, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := newAPIClient(ctx, cfg.Client)
	st, closeStore, err := openStore(cfg, api)
	if err != nil {
		return err
	}
	defer closeStore()
	ex, closeExchange, err := openExchange(cfg.Client, api)
	if err != nil {
		return err
	}
	defer closeExchange()

	term := render.NewTerminal(in, out, !flags.plain)
	m := session.NewManager(st, ex, term, session.Options{
		WelcomeMessage:  cfg.Chat.WelcomeMessage,
		FallbackMessage: cfg.Chat.FallbackMessage,
		Validator:       validator.New(cfg.Chat.MaxAttachmentBytes),
	})
	if err := m.Start(ctx); err != nil {
		return err
	}

	r := &repl{manager: m, term: term, out: out}
	for {
		fmt.Fprint(out, "> ")
		line, err := term.Reader().ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

type repl struct {
	manager *session.Manager
	term    *render.Terminal
	out     io.Writer
}

// handle 执行一行输入，返回是否退出。
func (r *repl) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, "/") {
		r.report(r.manager.Send(ctx, line))
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintf(r.out, helpText, strings.Join(session.SuggestionTopics(), ", "))
	case "/new":
		r.report(r.manager.NewConversation(ctx))
	case "/list":
		r.term.RenderConversationList(r.manager.Conversations(), r.manager.CurrentID())
	case "/open":
		r.report(r.manager.Select(ctx, arg))
	case "/delete":
		id := arg
		if id == "" {
			id = r.manager.CurrentID()
		}
		r.report(r.manager.Delete(ctx, id))
	case "/clear":
		r.report(r.manager.ClearCurrentChat(ctx))
	case "/clearall":
		r.report(r.manager.DeleteAll(ctx))
	case "/image":
		att, err := model.LoadAttachment(arg)
		if err != nil {
			r.term.Notify("Có lỗi xảy ra khi đọc file. Vui lòng thử lại.")
			return false
		}
		r.report(r.manager.StageAttachment(att))
	case "/remove":
		r.report(r.manager.RemoveAttachment())
	case "/suggest":
		r.report(r.manager.Suggest(ctx, arg))
	default:
		r.term.Notify("Lệnh không hợp lệ, gõ /help để xem trợ giúp")
	}
	return false
}

// report 展示会话管理器返回的、尚未提示过的错误。
func (r *repl) report(err error) {
	var rejection *validator.Rejection
	switch {
	case err == nil, errors.Is(err, session.ErrDeclined), errors.As(err, &rejection):
	case errors.Is(err, session.ErrUnknownConversation):
		r.term.Notify("Không tìm thấy cuộc trò chuyện")
	case errors.Is(err, session.ErrBusy):
		r.term.Notify("Đang chờ phản hồi, vui lòng đợi")
	default:
		r.term.Notify(err.Error())
	}
}
