// Package exchange 把一条用户消息发送给回复服务并取回助手回复。
package exchange

import (
	"context"
	"errors"

	"chatbot-go/internal/model"
)

var (
	// ErrTransport 表示网络或协议层面的失败。
	ErrTransport = errors.New("exchange transport failure")
	// ErrRejectedByService 表示服务端返回 success=false。
	ErrRejectedByService = errors.New("rejected by service")
)

// SendMessagePath 是 HTTP 交换端点。
const SendMessagePath = "/api/chat/send-message"

// StreamPath 是 WebSocket 交换端点。
const StreamPath = "/api/chat/ws"

// Client 完成一次请求/响应交换。实现必须可被并发调用。
type Client interface {
	Send(ctx context.Context, req model.ExchangeRequest) (*model.ExchangeResponse, error)
}

// checkResponse 把 success=false 转换为 ErrRejectedByService。
func checkResponse(resp *model.ExchangeResponse) (*model.ExchangeResponse, error) {
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "no reason given"
		}
		return nil, &RejectedError{Reason: reason}
	}
	return resp, nil
}

// RejectedError 携带服务端给出的拒绝原因。
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "rejected by service: " + e.Reason
}

func (e *RejectedError) Unwrap() error {
	return ErrRejectedByService
}
