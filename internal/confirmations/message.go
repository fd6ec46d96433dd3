package confirmations

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Message is the payload sent from API -> SQS -> Worker once an order has
// been placed.
type Message struct {
	OrderID        string          `json:"order_id"`
	SessionID      string          `json:"session_id"`
	Email          string          `json:"email"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	PlacedAt       time.Time       `json:"placed_at"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CorrelationID  string          `json:"correlation_id,omitempty"`
}

// Decode parses a queue message body.
func Decode(body string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return Message{}, fmt.Errorf("invalid message body: %w", err)
	}
	if m.OrderID == "" {
		return Message{}, fmt.Errorf("invalid message body: missing order_id")
	}
	return m, nil
}
