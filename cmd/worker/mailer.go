package main

import (
	"context"

	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"go.uber.org/zap"
)

// Mailer delivers the order confirmation email.
type Mailer interface {
	Send(ctx context.Context, m confirmations.Message) error
}

// LogMailer records the email it would send. Real delivery is out of scope
// for the storefront.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, m confirmations.Message) error {
	logging.Info("order confirmation email sent",
		zap.String("to", m.Email),
		zap.String("order_id", m.OrderID),
		zap.String("total", m.Total.StringFixed(2)),
		zap.Time("placed_at", m.PlacedAt),
	)
	return nil
}
