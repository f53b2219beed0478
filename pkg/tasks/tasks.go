// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// ExchangeRecord is one completed question/answer exchange, published for auditing.
type ExchangeRecord struct {
	OwnerID        string    `json:"owner_id"`
	ConversationID string    `json:"conversation_id"`
	InputText      string    `json:"input_text"`
	CVLabel        string    `json:"cv_label,omitempty"`
	ImageObject    string    `json:"image_object,omitempty"`
	ResponseText   string    `json:"response_text"`
	OccurredAt     time.Time `json:"occurred_at"`
}
