package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoadingBanner is shown while an order is being placed.
const LoadingBanner = "Complete payment in: 00:15:00"

// Confirmation records a placed order.
type Confirmation struct {
	OrderID  string          `json:"orderId"`
	PlacedAt time.Time       `json:"placedAt"`
	Email    string          `json:"email"`
	Total    decimal.Decimal `json:"total"`
}

// Session is the full state of one checkout page: form, active section,
// errors, coupon and submission flags. Its methods are the page's event
// handlers; callers serialise access.
type Session struct {
	ID           string        `json:"id"`
	Form         Form          `json:"form"`
	Active       Section       `json:"active"`
	Errors       ErrorMap      `json:"errors"`
	Coupon       Coupon        `json:"coupon"`
	Loading      bool          `json:"loading"`
	ShowSummary  bool          `json:"showSummary"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewSession returns a freshly mounted checkout starting on the summary step.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Form:      NewForm(),
		Active:    SectionSummary,
		Errors:    ErrorMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetField formats and stores one input value and clears any error shown
// for that field, without re-validating.
func (s *Session) SetField(field Field, raw string) error {
	if err := s.Form.set(field, Format(field, raw)); err != nil {
		return err
	}
	delete(s.Errors, field)
	return nil
}

// SetHasGST toggles the GST checkbox.
func (s *Session) SetHasGST(enabled bool) {
	s.Form.HasGST = enabled
}

// ToggleSummary flips the mobile order summary panel.
func (s *Session) ToggleSummary() {
	s.ShowSummary = !s.ShowSummary
}

// check validates section and stores the result as the current error map.
func (s *Session) check(section Section) bool {
	s.Errors = Validate(section, s.Form)
	return len(s.Errors) == 0
}

// GoTo moves to target after the active section validates clean. Leaving
// the summary step needs no validation. On refusal the error map is kept
// and the active section is unchanged.
func (s *Session) GoTo(target Section) bool {
	if target.Index() < 0 {
		return false
	}
	if s.Active.validated() && !s.check(s.Active) {
		return false
	}
	s.Active = target
	return true
}

// Continue advances to the next section with GoTo semantics.
func (s *Session) Continue() bool {
	next, ok := s.Active.Next()
	if !ok {
		return false
	}
	return s.GoTo(next)
}

// Back returns to the previous section without validation.
func (s *Session) Back() bool {
	prev, ok := s.Active.Prev()
	if !ok {
		return false
	}
	s.Active = prev
	return true
}

// SelectTab handles a click on a section header. Earlier sections open
// unconditionally; later ones first require the section right before the
// target to validate clean.
func (s *Session) SelectTab(target Section) bool {
	if target.Index() < 0 {
		return false
	}
	if target.Index() < s.Active.Index() {
		s.Active = target
		return true
	}
	if pre, ok := target.Prev(); ok && pre.validated() && !s.check(pre) {
		return false
	}
	return s.GoTo(target)
}

// Completed reports whether section lies before the active one.
func (s *Session) Completed(section Section) bool {
	return section.Index() >= 0 && section.Index() < s.Active.Index()
}

// ApplyCoupon resolves code against the cart and replaces any applied
// coupon. A rejected code leaves the coupon state untouched.
func (s *Session) ApplyCoupon(code string, cart Cart, r Rates) error {
	c, err := ResolveCoupon(code, cart.Subtotal(), r.Shipping)
	if err != nil {
		return err
	}
	s.Coupon = c
	return nil
}

// RemoveCoupon resets the coupon state.
func (s *Session) RemoveCoupon() {
	s.Coupon = Coupon{}
}

// BeginPlacement re-validates the payment section and raises the loading
// flag. It refuses while a placement is already running.
func (s *Session) BeginPlacement() error {
	if s.Loading {
		return ErrSubmissionInProgress
	}
	if s.Active != SectionPayment {
		return ErrNotAtPayment
	}
	if !s.check(SectionPayment) {
		return &ValidationError{Section: SectionPayment, Errors: s.Errors.Clone()}
	}
	s.Loading = true
	return nil
}

// SettlePlacement clears the loading flag and, on success, records the
// confirmation.
func (s *Session) SettlePlacement(o Outcome, total decimal.Decimal) {
	s.Loading = false
	if o.Err != nil {
		return
	}
	s.Confirmation = &Confirmation{
		OrderID:  o.OrderID,
		PlacedAt: o.PlacedAt,
		Email:    s.Form.Email,
		Total:    total,
	}
}

// Banner is the notice shown above the payment actions, if any.
func (s *Session) Banner() string {
	if s.Loading {
		return LoadingBanner
	}
	return ""
}

// ConfirmationNotice tells the shopper where the confirmation goes.
func (s *Session) ConfirmationNotice() string {
	if s.Active != SectionPayment {
		return ""
	}
	email := s.Form.Email
	if email == "" {
		email = "your email address"
	}
	return "Order confirmation email will be sent to " + email
}

// Tab is a section header as rendered in the wizard.
type Tab struct {
	Section   Section `json:"section"`
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Active    bool    `json:"active"`
	Completed bool    `json:"completed"`
	Summary   string  `json:"summary,omitempty"`
}

// Tabs returns the section headers with completion markers and the short
// summary line shown on completed sections.
func (s *Session) Tabs(cart Cart) []Tab {
	tabs := make([]Tab, 0, len(sectionOrder))
	for i, sec := range sectionOrder {
		t := Tab{
			Section:   sec,
			Number:    i + 1,
			Title:     sec.Title(),
			Active:    sec == s.Active,
			Completed: s.Completed(sec),
		}
		if t.Completed {
			t.Summary = s.tabSummary(sec, cart)
		}
		tabs = append(tabs, t)
	}
	return tabs
}

func (s *Session) tabSummary(sec Section, cart Cart) string {
	switch sec {
	case SectionSummary:
		return fmt.Sprintf("%d items", len(cart))
	case SectionContact:
		return s.Form.Email
	case SectionDelivery:
		if s.Form.FirstName == "" {
			return ""
		}
		return strings.TrimSpace(s.Form.FirstName + " " + s.Form.LastName)
	}
	return ""
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Errors = s.Errors.Clone()
	if s.Confirmation != nil {
		c := *s.Confirmation
		cp.Confirmation = &c
	}
	return &cp
}
