package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/imrishuroy/bonzicart-checkout/internal/confirmations"
	"github.com/imrishuroy/bonzicart-checkout/internal/idempotency"
	"github.com/imrishuroy/bonzicart-checkout/internal/logging"
	"github.com/imrishuroy/bonzicart-checkout/internal/sessions"
	"go.uber.org/zap"
)

var (
	// ErrNoAdjacentSection is returned by Continue on the last section and
	// by Back on the first.
	ErrNoAdjacentSection = errors.New("no section in that direction")
	// ErrIdempotencyKeyReused means the key was first used on another session.
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for another session")
)

// Config groups dependencies for the checkout service. Nil optional
// dependencies fall back to in-process implementations.
type Config struct {
	Sessions    sessions.Store
	Idempotency idempotency.Store
	Notifier    confirmations.Notifier
	Metrics     Metrics

	Cart      checkout.Cart
	Rates     checkout.Rates
	Submitter checkout.Submitter

	NewID func() string
	Now   func() time.Time
}

// Checkout runs checkout sessions. Mutations of one session are serialised
// in process; the store's version check catches writers elsewhere.
type Checkout struct {
	sessions  sessions.Store
	idem      idempotency.Store
	notifier  confirmations.Notifier
	metrics   Metrics
	cart      checkout.Cart
	rates     checkout.Rates
	submitter checkout.Submitter
	newID     func() string
	nowFunc   func() time.Time

	locks sync.Map // session id -> *sync.Mutex
}

// New validates the cart and returns a ready service.
func New(cfg Config) (*Checkout, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("sessions store is required")
	}
	if err := cfg.Cart.Validate(); err != nil {
		return nil, err
	}
	c := &Checkout{
		sessions:  cfg.Sessions,
		idem:      cfg.Idempotency,
		notifier:  cfg.Notifier,
		metrics:   cfg.Metrics,
		cart:      cfg.Cart,
		rates:     cfg.Rates,
		submitter: cfg.Submitter,
		newID:     cfg.NewID,
		nowFunc:   cfg.Now,
	}
	if c.idem == nil {
		c.idem = idempotency.NewMemoryStore(48 * time.Hour)
	}
	if c.notifier == nil {
		c.notifier = confirmations.LogNotifier{}
	}
	if c.metrics == nil {
		c.metrics = NopMetrics{}
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c, nil
}

// Cart returns the cart every session checks out.
func (c *Checkout) Cart() checkout.Cart { return c.cart }

// Rates returns the configured charges.
func (c *Checkout) Rates() checkout.Rates { return c.rates }

// Options lists states, payment methods, coupons and sections.
func (c *Checkout) Options() Options {
	secs := checkout.Sections()
	info := make([]SectionInfo, 0, len(secs))
	for _, s := range secs {
		info = append(info, SectionInfo{Section: s, Title: s.Title()})
	}
	return Options{
		States:         checkout.States(),
		Country:        checkout.DefaultCountry,
		PaymentMethods: checkout.PaymentMethods(),
		Coupons:        checkout.Coupons(),
		Sections:       info,
	}
}

// Create mounts a new checkout on the summary step.
func (c *Checkout) Create(ctx context.Context) (*View, error) {
	s := checkout.NewSession(c.newID(), c.nowFunc())
	if err := c.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logging.Debug("checkout session created", zap.String("session_id", s.ID))
	return c.view(s), nil
}

// Get returns the stored session.
func (c *Checkout) Get(ctx context.Context, id string) (*checkout.Session, error) {
	return c.sessions.Get(ctx, id)
}

// View renders the stored session.
func (c *Checkout) View(ctx context.Context, id string) (*View, error) {
	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.view(s), nil
}

// Quote returns the price details of a session.
func (c *Checkout) Quote(ctx context.Context, id string) (checkout.Breakdown, error) {
	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return checkout.Breakdown{}, err
	}
	return checkout.Quote(c.cart, s.Coupon, c.rates), nil
}

// Delete unmounts a session.
func (c *Checkout) Delete(ctx context.Context, id string) error {
	mu := c.lock(id)
	defer mu.Unlock()
	if err := c.sessions.Delete(ctx, id); err != nil {
		return err
	}
	c.locks.Delete(id)
	return nil
}

// SetFields applies a batch of input changes. The batch is all or nothing:
// an unknown field or rejected value leaves the session untouched.
func (c *Checkout) SetFields(ctx context.Context, id string, values map[string]string) (*View, error) {
	parsed := make(map[checkout.Field]string, len(values))
	for name, v := range values {
		f, err := checkout.ParseField(name)
		if err != nil {
			return nil, err
		}
		parsed[f] = v
	}
	return c.mutate(ctx, id, func(s *checkout.Session) error {
		for _, f := range checkout.Fields() {
			v, ok := parsed[f]
			if !ok {
				continue
			}
			if err := s.SetField(f, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetHasGST toggles the GST checkbox.
func (c *Checkout) SetHasGST(ctx context.Context, id string, enabled bool) (*View, error) {
	return c.mutate(ctx, id, func(s *checkout.Session) error {
		s.SetHasGST(enabled)
		return nil
	})
}

// ToggleSummary flips the order summary panel.
func (c *Checkout) ToggleSummary(ctx context.Context, id string) (*View, error) {
	return c.mutate(ctx, id, func(s *checkout.Session) error {
		s.ToggleSummary()
		return nil
	})
}

// GoTo moves to a section through the step controller. A refusal is
// persisted (the error map changes) and reported as *checkout.ValidationError
// alongside the view.
func (c *Checkout) GoTo(ctx context.Context, id, section string) (*View, error) {
	target, err := checkout.ParseSection(section)
	if err != nil {
		return nil, err
	}
	return c.transition(ctx, id, func(s *checkout.Session) (bool, error) { return s.GoTo(target), nil })
}

// SelectTab handles a click on a section header.
func (c *Checkout) SelectTab(ctx context.Context, id, section string) (*View, error) {
	target, err := checkout.ParseSection(section)
	if err != nil {
		return nil, err
	}
	return c.transition(ctx, id, func(s *checkout.Session) (bool, error) { return s.SelectTab(target), nil })
}

// Continue advances one section.
func (c *Checkout) Continue(ctx context.Context, id string) (*View, error) {
	return c.transition(ctx, id, func(s *checkout.Session) (bool, error) {
		if _, ok := s.Active.Next(); !ok {
			return false, ErrNoAdjacentSection
		}
		return s.Continue(), nil
	})
}

// Back returns one section without validation.
func (c *Checkout) Back(ctx context.Context, id string) (*View, error) {
	return c.mutate(ctx, id, func(s *checkout.Session) error {
		if !s.Back() {
			return ErrNoAdjacentSection
		}
		return nil
	})
}

// ApplyCoupon applies a promotion code. Rejected codes leave the session
// untouched.
func (c *Checkout) ApplyCoupon(ctx context.Context, id, code string) (*View, error) {
	v, err := c.mutate(ctx, id, func(s *checkout.Session) error {
		return s.ApplyCoupon(code, c.cart, c.rates)
	})
	switch {
	case err == nil:
		c.record("coupon", c.metrics.CouponApplied(ctx, v.Session.Coupon.Code, true))
	case errors.Is(err, checkout.ErrEmptyCoupon), errors.Is(err, checkout.ErrUnknownCoupon):
		c.record("coupon", c.metrics.CouponApplied(ctx, "", false))
	}
	return v, err
}

// RemoveCoupon clears the coupon.
func (c *Checkout) RemoveCoupon(ctx context.Context, id string) (*View, error) {
	return c.mutate(ctx, id, func(s *checkout.Session) error {
		s.RemoveCoupon()
		return nil
	})
}

// transition runs a step move. Refusals still save the new error map.
func (c *Checkout) transition(ctx context.Context, id string, move func(*checkout.Session) (bool, error)) (*View, error) {
	var refused *checkout.ValidationError
	v, err := c.mutate(ctx, id, func(s *checkout.Session) error {
		from := s.Active
		ok, err := move(s)
		if err != nil {
			return err
		}
		if !ok {
			refused = &checkout.ValidationError{Section: from, Errors: s.Errors.Clone()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refused != nil {
		c.record("transition", c.metrics.TransitionRefused(ctx, string(refused.Section)))
		return v, refused
	}
	return v, nil
}

// mutate loads, changes and saves one session under its lock. fn's error
// aborts without saving.
func (c *Checkout) mutate(ctx context.Context, id string, fn func(*checkout.Session) error) (*View, error) {
	mu := c.lock(id)
	defer mu.Unlock()

	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	return c.view(s), nil
}

func (c *Checkout) lock(id string) *sync.Mutex {
	v, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

func (c *Checkout) record(what string, err error) {
	if err != nil {
		logging.Warn("failed to record metric", zap.String("metric", what), zap.Error(err))
	}
}
