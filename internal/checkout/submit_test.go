package checkout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitter_Succeeds(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sub := Submitter{
		Delay: 10 * time.Millisecond,
		Now:   func() time.Time { return fixed },
		NewID: func() string { return "order-1" },
	}

	var settled Outcome
	s := sub.Start(context.Background(), func(o Outcome) { settled = o })

	out, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if out.OrderID != "order-1" || !out.PlacedAt.Equal(fixed) {
		t.Fatalf("outcome = %+v", out)
	}
	if settled.OrderID != "order-1" {
		t.Fatalf("settle not called before done: %+v", settled)
	}
}

func TestSubmitter_Cancel(t *testing.T) {
	s := NewSubmitter(time.Hour).Start(context.Background(), nil)
	s.Cancel()
	s.Cancel()

	_, err := s.Wait(context.Background())
	if !errors.Is(err, ErrSubmissionCanceled) {
		t.Fatalf("expected ErrSubmissionCanceled, got %v", err)
	}
}

func TestSubmission_WaitHonoursContext(t *testing.T) {
	s := NewSubmitter(time.Hour).Start(context.Background(), nil)
	defer s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
