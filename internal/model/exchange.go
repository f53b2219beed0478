package model

// ExchangeRequest 是发往消息交换端点的请求体。Image 为 data URL。
type ExchangeRequest struct {
	Message        string `json:"message"`
	Image          string `json:"image,omitempty"`
	ConversationID string `json:"conversation_id"`
}

// ExchangeResponse 是消息交换端点的响应体。Success 为 false 时 Error 说明原因。
type ExchangeResponse struct {
	Success      bool     `json:"success"`
	Response     string   `json:"response"`
	CVPrediction string   `json:"cv_prediction,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Annotation 返回附带的分类结果；两者都缺失时为 nil，只渲染纯文本回复。
func (r *ExchangeResponse) Annotation() *Annotation {
	return NewAnnotation(r.CVPrediction, r.Confidence)
}
