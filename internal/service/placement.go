package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"github.com/imrishuroy/bonzicart-checkout/internal/sessions"
	"go.uber.org/zap"
)

// settleTimeout bounds the writes done after the submission timer fires.
const settleTimeout = 10 * time.Second

// settleRetries is how often a settle write is retried on a version
// conflict with another writer.
const settleRetries = 3

// Placement is a place-order request that was either started or answered
// from the idempotency store.
type Placement struct {
	// View is the session right after the loading flag was raised. Nil on
	// replays.
	View *View
	// Replay is set when the idempotency key had already been used.
	Replay *idempotency.Record

	sub      *checkout.Submission
	response *OrderResponse
	err      error
}

// Wait blocks until the order settles and returns its confirmation.
func (p *Placement) Wait(ctx context.Context) (*OrderResponse, error) {
	if p.sub == nil {
		return nil, errors.New("placement was replayed; nothing to wait for")
	}
	if _, err := p.sub.Wait(ctx); err != nil {
		return nil, err
	}
	return p.response, p.err
}

// Cancel abandons the submission if its timer has not fired.
func (p *Placement) Cancel() {
	if p.sub != nil {
		p.sub.Cancel()
	}
}

// PlaceOrder starts submitting the order of a session on the payment step.
// With a non-empty idempotencyKey a repeated request is answered from the
// stored record instead of placing a second order. The submission outlives
// ctx's cancellation; use Placement.Wait to block on it.
func (c *Checkout) PlaceOrder(ctx context.Context, id, idempotencyKey, correlationID string) (*Placement, error) {
	if idempotencyKey != "" {
		rec, err := c.claimKey(ctx, id, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return &Placement{Replay: rec}, nil
		}
	}

	p, err := c.beginPlacement(ctx, id, idempotencyKey, correlationID)
	if err != nil && idempotencyKey != "" {
		if merr := c.idem.MarkFailed(ctx, idempotencyKey, err.Error()); merr != nil {
			logging.Warn("failed to mark idempotency key failed", zap.String("idempotency_key", idempotencyKey), zap.Error(merr))
		}
	}
	return p, err
}

// claimKey reserves idempotencyKey for session id. It returns the existing
// record when the request should be answered from it, or nil to proceed.
func (c *Checkout) claimKey(ctx context.Context, id, key string) (*idempotency.Record, error) {
	created, err := c.idem.CreateIfNotExists(ctx, key, id)
	if err != nil {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}
	if created {
		return nil, nil
	}
	rec, err := c.idem.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}
	if rec == nil {
		// expired between the two calls
		return c.claimKey(ctx, id, key)
	}
	if rec.SessionID != "" && rec.SessionID != id {
		return nil, ErrIdempotencyKeyReused
	}
	if rec.Status == idempotency.StatusFailed {
		// a failed attempt may be retried with the same key, but only by
		// one request at a time
		reclaimed, err := c.idem.Reclaim(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if !reclaimed {
			return c.claimKey(ctx, id, key)
		}
		return nil, nil
	}
	return rec, nil
}

func (c *Checkout) beginPlacement(ctx context.Context, id, key, correlationID string) (*Placement, error) {
	mu := c.lock(id)
	defer mu.Unlock()

	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.BeginPlacement(); err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			// the error map is shown to the shopper, so keep it
			if serr := c.sessions.Save(ctx, s); serr != nil {
				return nil, serr
			}
			c.record("transition", c.metrics.TransitionRefused(ctx, string(verr.Section)))
		}
		return nil, err
	}
	if err := c.sessions.Save(ctx, s); err != nil {
		return nil, err
	}

	total := checkout.Quote(c.cart, s.Coupon, c.rates).Total
	p := &Placement{View: c.view(s.Clone())}
	msg := confirmations.Message{
		SessionID:      id,
		Email:          s.Form.Email,
		Total:          total,
		PaymentMethod:  string(s.Form.PaymentMethod),
		IdempotencyKey: key,
		CorrelationID:  correlationID,
	}

	logging.Info("order placement started",
		zap.String("session_id", id),
		zap.String("total", total.StringFixed(2)),
		zap.String("request_id", correlationID),
	)
	p.sub = c.submitter.Start(context.WithoutCancel(ctx), func(o checkout.Outcome) {
		p.response, p.err = c.settle(id, key, o, msg)
	})
	return p, nil
}

// settle records the outcome on the session and, for placed orders, sends
// the confirmation, emits metrics and stores the idempotent response.
func (c *Checkout) settle(id, key string, o checkout.Outcome, msg confirmations.Message) (*OrderResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	if err := c.settleSession(ctx, id, o, msg); err != nil {
		logging.Error("failed to settle order", zap.String("session_id", id), zap.Error(err))
		c.failKey(ctx, key, err)
		return nil, err
	}
	if o.Err != nil {
		logging.Warn("order placement canceled", zap.String("session_id", id), zap.Error(o.Err))
		c.failKey(ctx, key, o.Err)
		return nil, o.Err
	}

	resp := &OrderResponse{
		SessionID:     id,
		OrderID:       o.OrderID,
		PlacedAt:      o.PlacedAt,
		Email:         msg.Email,
		PaymentMethod: msg.PaymentMethod,
		Total:         msg.Total,
	}
	logging.Info("order placed",
		zap.String("session_id", id),
		zap.String("order_id", o.OrderID),
		zap.String("request_id", msg.CorrelationID),
	)

	msg.OrderID = o.OrderID
	msg.PlacedAt = o.PlacedAt
	if err := c.notifier.Notify(ctx, msg); err != nil {
		// the order stands; only the email is lost
		logging.Error("failed to publish order confirmation", zap.String("order_id", o.OrderID), zap.Error(err))
	}
	c.record("order", c.metrics.OrderPlaced(ctx, msg.Total.InexactFloat64(), msg.PaymentMethod))

	if key != "" {
		body, err := json.Marshal(resp)
		if err == nil {
			err = c.idem.MarkDone(ctx, key, o.OrderID, string(body), http.StatusCreated)
		}
		if err != nil {
			logging.Warn("failed to store idempotent response", zap.String("idempotency_key", key), zap.Error(err))
		}
	}
	return resp, nil
}

func (c *Checkout) settleSession(ctx context.Context, id string, o checkout.Outcome, msg confirmations.Message) error {
	mu := c.lock(id)
	defer mu.Unlock()

	var err error
	for i := 0; i < settleRetries; i++ {
		var s *checkout.Session
		s, err = c.sessions.Get(ctx, id)
		if err != nil {
			return err
		}
		s.SettlePlacement(o, msg.Total)
		err = c.sessions.Save(ctx, s)
		if !errors.Is(err, sessions.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (c *Checkout) failKey(ctx context.Context, key string, cause error) {
	if key == "" {
		return
	}
	if err := c.idem.MarkFailed(ctx, key, cause.Error()); err != nil {
		logging.Warn("failed to mark idempotency key failed", zap.String("idempotency_key", key), zap.Error(err))
	}
}
