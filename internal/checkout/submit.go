package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSubmitDelay is how long a simulated placement takes.
const DefaultSubmitDelay = 2 * time.Second

// Outcome is the result of a placement. Err is only set when the
// submission was canceled; the simulated gateway itself never fails.
type Outcome struct {
	OrderID  string
	PlacedAt time.Time
	Err      error
}

// Submitter simulates handing an order to a payment provider.
type Submitter struct {
	Delay time.Duration
	Now   func() time.Time
	NewID func() string
}

// NewSubmitter returns a Submitter with the given delay.
func NewSubmitter(delay time.Duration) Submitter {
	return Submitter{Delay: delay, Now: time.Now, NewID: uuid.NewString}
}

// Submission is an in-flight placement.
type Submission struct {
	done     chan struct{}
	cancel   chan struct{}
	stopOnce sync.Once
	outcome  Outcome
}

// Start runs the placement timer in the background. settle, if non-nil,
// runs with the outcome before Done is closed.
func (s Submitter) Start(ctx context.Context, settle func(Outcome)) *Submission {
	sub := &Submission{
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	now, newID := s.Now, s.NewID
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}

	go func() {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		var out Outcome
		select {
		case <-timer.C:
			out = Outcome{OrderID: newID(), PlacedAt: now()}
		case <-sub.cancel:
			out.Err = ErrSubmissionCanceled
		case <-ctx.Done():
			out.Err = fmt.Errorf("%w: %v", ErrSubmissionCanceled, ctx.Err())
		}
		if settle != nil {
			settle(out)
		}
		sub.outcome = out
		close(sub.done)
	}()
	return sub
}

// Done is closed once the submission has settled.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Cancel stops the timer if it has not fired yet.
func (s *Submission) Cancel() {
	s.stopOnce.Do(func() { close(s.cancel) })
}

// Wait blocks until the submission settles or ctx ends.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, s.outcome.Err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
