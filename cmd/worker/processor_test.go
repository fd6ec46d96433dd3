package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/shopspring/decimal"
)

// --- mock implementations ---

type mockMailer struct {
	sent []confirmations.Message
	err  error
}

func (m *mockMailer) Send(ctx context.Context, msg confirmations.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sqsEvent(t *testing.T, msgs ...confirmations.Message) events.SQSEvent {
	t.Helper()
	var ev events.SQSEvent
	for i, m := range msgs {
		body, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		ev.Records = append(ev.Records, events.SQSMessage{MessageId: string(rune('a' + i)), Body: string(body)})
	}
	return ev
}

func confirmation(orderID string) confirmations.Message {
	return confirmations.Message{
		OrderID:   orderID,
		SessionID: "s1",
		Email:     "jane@example.com",
		Total:     decimal.RequireFromString("210.04"),
		PlacedAt:  time.Now().UTC(),
	}
}

// --- test cases ---

func TestWorkerProcess_Success(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	mailer := &mockMailer{}
	p := NewProcessor(store, mailer)

	resp, err := p.Handle(context.Background(), sqsEvent(t, confirmation("o1")))
	if err != nil || len(resp.BatchItemFailures) != 0 {
		t.Fatalf("unexpected worker result: %+v %v", resp, err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Email != "jane@example.com" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
	rec, _ := store.Get(context.Background(), confirmationKey("o1"))
	if rec == nil || rec.Status != idempotency.StatusDone || rec.OrderID != "o1" {
		t.Fatalf("idempotency record = %+v", rec)
	}
}

func TestWorkerProcess_DuplicateDelivery(t *testing.T) {
	mailer := &mockMailer{}
	p := NewProcessor(idempotency.NewMemoryStore(time.Hour), mailer)

	ev := sqsEvent(t, confirmation("o1"), confirmation("o1"))
	resp, _ := p.Handle(context.Background(), ev)
	if len(resp.BatchItemFailures) != 0 {
		t.Fatalf("duplicates should be dropped, not failed: %+v", resp)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
}

func TestWorkerProcess_InProgressIsRetried(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	_, _ = store.CreateIfNotExists(context.Background(), confirmationKey("o1"), "s1")
	p := NewProcessor(store, &mockMailer{})

	resp, _ := p.Handle(context.Background(), sqsEvent(t, confirmation("o1")))
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "a" {
		t.Fatalf("expected the message to be reported for retry: %+v", resp)
	}
}

func TestWorkerProcess_PartialBatchFailure(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	p := NewProcessor(store, &mockMailer{})

	ev := sqsEvent(t, confirmation("o1"))
	ev.Records = append(ev.Records, events.SQSMessage{MessageId: "bad", Body: "not json"})

	resp, err := p.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "bad" {
		t.Fatalf("failures = %+v", resp.BatchItemFailures)
	}
}

func TestWorkerProcess_MailerFailureAllowsRetry(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	mailer := &mockMailer{err: errors.New("smtp down")}
	p := NewProcessor(store, mailer)
	ev := sqsEvent(t, confirmation("o1"))

	resp, _ := p.Handle(context.Background(), ev)
	if len(resp.BatchItemFailures) != 1 {
		t.Fatalf("expected a failure, got %+v", resp)
	}
	rec, _ := store.Get(context.Background(), confirmationKey("o1"))
	if rec.Status != idempotency.StatusFailed {
		t.Fatalf("status = %s, want FAILED", rec.Status)
	}

	mailer.err = nil
	resp, _ = p.Handle(context.Background(), ev)
	if len(resp.BatchItemFailures) != 0 || len(mailer.sent) != 1 {
		t.Fatalf("redelivery should send: %+v sent=%d", resp, len(mailer.sent))
	}
}

func TestWorkerProcess_FailedKeyResentOnce(t *testing.T) {
	store := idempotency.NewMemoryStore(time.Hour)
	ctx := context.Background()
	key := confirmationKey("o1")
	_, _ = store.CreateIfNotExists(ctx, key, "s1")
	_ = store.MarkFailed(ctx, key, "smtp down")

	// another delivery of the same message took the retry first
	if ok, _ := store.Reclaim(ctx, key); !ok {
		t.Fatalf("setup: reclaim failed")
	}

	mailer := &mockMailer{}
	p := NewProcessor(store, mailer)
	resp, _ := p.Handle(ctx, sqsEvent(t, confirmation("o1")))
	if len(resp.BatchItemFailures) != 1 || len(mailer.sent) != 0 {
		t.Fatalf("concurrent redelivery must not send: %+v sent=%d", resp, len(mailer.sent))
	}

	_ = store.MarkFailed(ctx, key, "smtp down")
	resp, _ = p.Handle(ctx, sqsEvent(t, confirmation("o1")))
	if len(resp.BatchItemFailures) != 0 || len(mailer.sent) != 1 {
		t.Fatalf("failed confirmation should be resent once: %+v sent=%d", resp, len(mailer.sent))
	}
	if rec, _ := store.Get(ctx, key); rec.Status != idempotency.StatusDone {
		t.Fatalf("status = %s, want DONE", rec.Status)
	}
}
