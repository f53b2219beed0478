package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatbot-go/internal/model"
	"chatbot-go/pkg/apiclient"
	"chatbot-go/pkg/log"
)

// WebSocketClient 在一条长连接上逐帧交换消息。
// 连接在首次发送时建立，出错后丢弃，下次发送重新建立。
type WebSocketClient struct {
	api    *apiclient.Client
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketClient 创建基于 WebSocket 的交换客户端。
func NewWebSocketClient(api *apiclient.Client) *WebSocketClient {
	return &WebSocketClient{
		api:    api,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

func (c *WebSocketClient) Send(ctx context.Context, req model.ExchangeRequest) (*model.ExchangeResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	// ctx 取消时关闭连接，打断阻塞中的读写
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
		_ = conn.SetReadDeadline(time.Time{})
	}

	if err := conn.WriteJSON(req); err != nil {
		c.drop()
		return nil, fmt.Errorf("%w: write frame: %v", ErrTransport, err)
	}
	var resp model.ExchangeResponse
	if err := conn.ReadJSON(&resp); err != nil {
		c.drop()
		return nil, fmt.Errorf("%w: read frame: %v", ErrTransport, err)
	}
	return checkResponse(&resp)
}

// Close 关闭当前连接。
func (c *WebSocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.drop()
	return err
}

func (c *WebSocketClient) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	url, err := c.api.WebSocketURL(StreamPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	conn, _, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrTransport, err)
	}
	log.Infow("websocket connected", "path", StreamPath)
	c.conn = conn
	return conn, nil
}

func (c *WebSocketClient) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
