package checkout

import (
	"fmt"
	"strings"
)

// Field names a single form input. The string values match the json names
// used on the wire and in ErrorMap keys.
type Field string

const (
	FieldEmail          Field = "email"
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldPhone          Field = "phone"
	FieldHasGST         Field = "hasGST"
	FieldCompanyName    Field = "companyName"
	FieldGSTNumber      Field = "gstNumber"
	FieldAddress        Field = "address"
	FieldLocality       Field = "locality"
	FieldCity           Field = "city"
	FieldLandmark       Field = "landmark"
	FieldZipCode        Field = "zipCode"
	FieldState          Field = "state"
	FieldCountry        Field = "country"
	FieldPaymentMethod  Field = "paymentMethod"
	FieldCardNumber     Field = "cardNumber"
	FieldExpiryDate     Field = "expiryDate"
	FieldCVV            Field = "cvv"
	FieldCardholderName Field = "cardholderName"
	FieldPromoCode      Field = "promoCode"
)

var allFields = []Field{
	FieldEmail, FieldFirstName, FieldLastName, FieldPhone, FieldHasGST,
	FieldCompanyName, FieldGSTNumber, FieldAddress, FieldLocality, FieldCity,
	FieldLandmark, FieldZipCode, FieldState, FieldCountry, FieldPaymentMethod,
	FieldCardNumber, FieldExpiryDate, FieldCVV, FieldCardholderName, FieldPromoCode,
}

// Fields returns every form field in declaration order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField maps a wire name to a Field.
func ParseField(name string) (Field, error) {
	for _, f := range allFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ErrorMap holds one message per field that failed validation.
type ErrorMap map[Field]string

// Clone returns an independent copy.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PaymentMethod is the selected payment option.
type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCOD        PaymentMethod = "cod"
	PaymentPayPal     PaymentMethod = "paypal"
)

// PaymentMethods lists the accepted payment options.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD, PaymentPayPal}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, pm := range PaymentMethods() {
		if string(pm) == strings.ToLower(strings.TrimSpace(s)) {
			return pm, nil
		}
	}
	return "", fmt.Errorf("%w: payment method %q", ErrInvalidValue, s)
}

var usStates = []string{
	"Alabama", "Alaska", "Arizona", "California",
	"Colorado", "Florida", "Texas", "Washington",
}

// DefaultState is preselected in the delivery form.
const DefaultState = "California"

// DefaultCountry is the only country the storefront ships to.
const DefaultCountry = "United States"

// States returns the selectable delivery states.
func States() []string {
	out := make([]string, len(usStates))
	copy(out, usStates)
	return out
}

func isUSState(s string) bool {
	for _, st := range usStates {
		if st == s {
			return true
		}
	}
	return false
}
