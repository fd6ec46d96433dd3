package checkout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CouponCode is a recognised promotion code, always upper case.
type CouponCode string

const (
	CouponMMTSecure CouponCode = "MMTSECURE"
	CouponMMTRBLEMI CouponCode = "MMTRBLEMI"
	CouponMMTSuper  CouponCode = "MMTSUPER"
	CouponSave10    CouponCode = "SAVE10"
	CouponFreeShip  CouponCode = "FREESHIP"
	CouponBonzi25   CouponCode = "BONZI25"
)

type couponRule struct {
	description string
	discount    func(subtotal, shipping decimal.Decimal) decimal.Decimal
}

func flat(amount int64) func(_, _ decimal.Decimal) decimal.Decimal {
	return func(_, _ decimal.Decimal) decimal.Decimal { return decimal.NewFromInt(amount) }
}

var couponTable = map[CouponCode]couponRule{
	CouponMMTSecure: {"$10 off", flat(10)},
	CouponMMTRBLEMI: {"$15 off", flat(15)},
	CouponMMTSuper:  {"$20 off", flat(20)},
	CouponSave10: {"10% off the item subtotal", func(subtotal, _ decimal.Decimal) decimal.Decimal {
		return subtotal.Mul(decimal.RequireFromString("0.1"))
	}},
	CouponFreeShip: {"free shipping", func(_, shipping decimal.Decimal) decimal.Decimal {
		return shipping
	}},
	CouponBonzi25: {"$25 off", flat(25)},
}

// Coupon is the coupon state of a checkout. Amount only counts while Applied.
type Coupon struct {
	Code           string          `json:"code"`
	Applied        bool            `json:"applied"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Discount is the amount pricing should subtract.
func (c Coupon) Discount() decimal.Decimal {
	if !c.Applied {
		return decimal.Zero
	}
	return c.DiscountAmount
}

// CouponInfo describes a table entry for listings.
type CouponInfo struct {
	Code        CouponCode `json:"code"`
	Description string     `json:"description"`
}

// Coupons lists the coupon table sorted by code.
func Coupons() []CouponInfo {
	out := make([]CouponInfo, 0, len(couponTable))
	for code, rule := range couponTable {
		out = append(out, CouponInfo{Code: code, Description: rule.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ParseCouponCode is case-insensitive and ignores surrounding blanks.
func ParseCouponCode(raw string) (CouponCode, error) {
	code := CouponCode(strings.ToUpper(strings.TrimSpace(raw)))
	if code == "" {
		return "", ErrEmptyCoupon
	}
	if _, ok := couponTable[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCoupon, raw)
	}
	return code, nil
}

// ResolveCoupon turns a code into an applied coupon for the given subtotal
// and shipping charge.
func ResolveCoupon(raw string, subtotal, shipping decimal.Decimal) (Coupon, error) {
	code, err := ParseCouponCode(raw)
	if err != nil {
		return Coupon{}, err
	}
	return Coupon{
		Code:           string(code),
		Applied:        true,
		DiscountAmount: couponTable[code].discount(subtotal, shipping),
	}, nil
}
