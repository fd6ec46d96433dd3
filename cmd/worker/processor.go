package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"go.uber.org/zap"
)

// errInProgress makes SQS redeliver a message another invocation is
// still handling.
var errInProgress = errors.New("confirmation already in progress")

// Processor sends confirmation emails for messages from the confirmations
// queue. SQS delivers at least once, so every order is claimed in the
// idempotency store before its email goes out.
type Processor struct {
	idempStore idempotency.Store
	mailer     Mailer
}

// NewProcessor creates a new worker processor.
func NewProcessor(store idempotency.Store, mailer Mailer) *Processor {
	return &Processor{idempStore: store, mailer: mailer}
}

// Handle processes an SQS batch. Failed messages are reported individually
// so only they are retried; after too many attempts they go to the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			logging.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func confirmationKey(orderID string) string {
	return "confirmation:" + orderID
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	msg, err := confirmations.Decode(rec.Body)
	if err != nil {
		return err
	}

	logging.Info("received confirmation",
		zap.String("order_id", msg.OrderID),
		zap.String("session_id", msg.SessionID),
		zap.String("correlation_id", msg.CorrelationID),
	)

	key := confirmationKey(msg.OrderID)
	created, err := p.idempStore.CreateIfNotExists(ctx, key, msg.SessionID)
	if err != nil {
		return fmt.Errorf("claim confirmation: %w", err)
	}
	if !created {
		existing, err := p.idempStore.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read confirmation record: %w", err)
		}
		switch {
		case existing == nil:
			// lapsed between the two calls; the redelivery claims it afresh
			return fmt.Errorf("order=%s: %w", msg.OrderID, errInProgress)
		case existing.Status == idempotency.StatusDone:
			logging.Info("duplicate confirmation dropped", zap.String("order_id", msg.OrderID))
			return nil
		case existing.Status == idempotency.StatusFailed:
			reclaimed, err := p.idempStore.Reclaim(ctx, key)
			if err != nil {
				return fmt.Errorf("reclaim confirmation: %w", err)
			}
			if !reclaimed {
				// a concurrent delivery is already resending
				return fmt.Errorf("order=%s: %w", msg.OrderID, errInProgress)
			}
		default:
			return fmt.Errorf("order=%s: %w", msg.OrderID, errInProgress)
		}
	}

	if err := p.mailer.Send(ctx, msg); err != nil {
		if merr := p.idempStore.MarkFailed(ctx, key, err.Error()); merr != nil {
			logging.Warn("failed to mark confirmation failed", zap.String("order_id", msg.OrderID), zap.Error(merr))
		}
		return fmt.Errorf("send confirmation for order=%s: %w", msg.OrderID, err)
	}

	if err := p.idempStore.MarkDone(ctx, key, msg.OrderID, "", 200); err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}
	logging.Info("confirmation completed", zap.String("order_id", msg.OrderID))
	return nil
}
