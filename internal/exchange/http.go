package exchange

import (
	"context"
	"fmt"
	"net/http"

	"chatbot-go/internal/model"
	"chatbot-go/pkg/apiclient"
)

// HTTPClient 通过 POST /api/chat/send-message 交换消息。
type HTTPClient struct {
	api *apiclient.Client
}

// NewHTTPClient 创建基于 HTTP 的交换客户端。
func NewHTTPClient(api *apiclient.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

func (c *HTTPClient) Send(ctx context.Context, req model.ExchangeRequest) (*model.ExchangeResponse, error) {
	var resp model.ExchangeResponse
	if err := c.api.Do(ctx, http.MethodPost, SendMessagePath, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return checkResponse(&resp)
}
