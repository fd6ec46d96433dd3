package confirmations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/bonzicart-checkout/internal/aws"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"go.uber.org/zap"
)

// Notifier hands a confirmation to whatever delivers the email.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// QueueNotifier publishes confirmations to the SQS queue read by the worker.
type QueueNotifier struct {
	publisher *aws.Publisher
}

func NewQueueNotifier(p *aws.Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: p}
}

func (n *QueueNotifier) Notify(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}
	attrs := map[string]string{
		"order_id":        m.OrderID,
		"session_id":      m.SessionID,
		"idempotency_key": m.IdempotencyKey,
		"correlation_id":  m.CorrelationID,
	}
	return n.publisher.SendMessage(ctx, string(body), attrs)
}

// LogNotifier only logs; used when no queue is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, m Message) error {
	logging.Info("order confirmation",
		zap.String("order_id", m.OrderID),
		zap.String("session_id", m.SessionID),
		zap.String("email", m.Email),
		zap.String("total", m.Total.StringFixed(2)),
	)
	return nil
}
