package service

import (
	"time"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/shopspring/decimal"
)

// View is what the checkout page renders for a session.
type View struct {
	Session            *checkout.Session  `json:"session"`
	Tabs               []checkout.Tab     `json:"tabs"`
	Quote              checkout.Breakdown `json:"quote"`
	Banner             string             `json:"banner,omitempty"`
	ConfirmationNotice string             `json:"confirmationNotice,omitempty"`
}

// OrderResponse is returned for a placed order and stored for idempotent
// replays of the same request.
type OrderResponse struct {
	SessionID     string          `json:"sessionId"`
	OrderID       string          `json:"orderId"`
	PlacedAt      time.Time       `json:"placedAt"`
	Email         string          `json:"email"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
}

// Options lists the choices the form offers.
type Options struct {
	States         []string                 `json:"states"`
	Country        string                   `json:"country"`
	PaymentMethods []checkout.PaymentMethod `json:"paymentMethods"`
	Coupons        []checkout.CouponInfo    `json:"coupons"`
	Sections       []SectionInfo            `json:"sections"`
}

// SectionInfo is a wizard step and its header title.
type SectionInfo struct {
	Section checkout.Section `json:"section"`
	Title   string           `json:"title"`
}

func (c *Checkout) view(s *checkout.Session) *View {
	return &View{
		Session:            s,
		Tabs:               s.Tabs(c.cart),
		Quote:              checkout.Quote(c.cart, s.Coupon, c.rates),
		Banner:             s.Banner(),
		ConfirmationNotice: s.ConfirmationNotice(),
	}
}
