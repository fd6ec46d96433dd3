package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidValue         = errors.New("invalid value")
	ErrUnknownSection       = errors.New("unknown section")
	ErrEmptyCoupon          = errors.New("coupon code is empty")
	ErrUnknownCoupon        = errors.New("invalid coupon code")
	ErrValidation           = errors.New("validation failed")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrNotAtPayment         = errors.New("orders can only be placed from the payment section")
	ErrSubmissionCanceled   = errors.New("order submission canceled")
	ErrInvalidCart          = errors.New("invalid cart")
)

// ValidationError carries the error map of the section that refused a
// transition or an order placement.
type ValidationError struct {
	Section Section
	Errors  ErrorMap
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s section invalid: %s", e.Section, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
