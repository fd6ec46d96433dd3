package checkout

import (
	"fmt"
	"strconv"
)

// Form is everything the shopper types into the checkout page.
type Form struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	HasGST      bool   `json:"hasGST"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`

	Address  string `json:"address"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	Landmark string `json:"landmark"`
	ZipCode  string `json:"zipCode"`
	State    string `json:"state"`
	Country  string `json:"country"`

	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	CardNumber     string        `json:"cardNumber"`
	ExpiryDate     string        `json:"expiryDate"`
	CVV            string        `json:"cvv"`
	CardholderName string        `json:"cardholderName"`
	PromoCode      string        `json:"promoCode"`
}

// NewForm returns the form as it looks when the page mounts.
func NewForm() Form {
	return Form{
		State:         DefaultState,
		Country:       DefaultCountry,
		PaymentMethod: PaymentCard,
	}
}

// Get returns the stored value of a field in its wire form.
func (f *Form) Get(field Field) (string, error) {
	switch field {
	case FieldEmail:
		return f.Email, nil
	case FieldFirstName:
		return f.FirstName, nil
	case FieldLastName:
		return f.LastName, nil
	case FieldPhone:
		return f.Phone, nil
	case FieldHasGST:
		return strconv.FormatBool(f.HasGST), nil
	case FieldCompanyName:
		return f.CompanyName, nil
	case FieldGSTNumber:
		return f.GSTNumber, nil
	case FieldAddress:
		return f.Address, nil
	case FieldLocality:
		return f.Locality, nil
	case FieldCity:
		return f.City, nil
	case FieldLandmark:
		return f.Landmark, nil
	case FieldZipCode:
		return f.ZipCode, nil
	case FieldState:
		return f.State, nil
	case FieldCountry:
		return f.Country, nil
	case FieldPaymentMethod:
		return string(f.PaymentMethod), nil
	case FieldCardNumber:
		return f.CardNumber, nil
	case FieldExpiryDate:
		return f.ExpiryDate, nil
	case FieldCVV:
		return f.CVV, nil
	case FieldCardholderName:
		return f.CardholderName, nil
	case FieldPromoCode:
		return f.PromoCode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// set stores an already formatted value. Select-style fields reject values
// outside their option list.
func (f *Form) set(field Field, v string) error {
	switch field {
	case FieldEmail:
		f.Email = v
	case FieldFirstName:
		f.FirstName = v
	case FieldLastName:
		f.LastName = v
	case FieldPhone:
		f.Phone = v
	case FieldHasGST:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: hasGST %q", ErrInvalidValue, v)
		}
		f.HasGST = b
	case FieldCompanyName:
		f.CompanyName = v
	case FieldGSTNumber:
		f.GSTNumber = v
	case FieldAddress:
		f.Address = v
	case FieldLocality:
		f.Locality = v
	case FieldCity:
		f.City = v
	case FieldLandmark:
		f.Landmark = v
	case FieldZipCode:
		f.ZipCode = v
	case FieldState:
		if !isUSState(v) {
			return fmt.Errorf("%w: state %q", ErrInvalidValue, v)
		}
		f.State = v
	case FieldCountry:
		f.Country = v
	case FieldPaymentMethod:
		pm, err := ParsePaymentMethod(v)
		if err != nil {
			return err
		}
		f.PaymentMethod = pm
	case FieldCardNumber:
		f.CardNumber = v
	case FieldExpiryDate:
		f.ExpiryDate = v
	case FieldCVV:
		f.CVV = v
	case FieldCardholderName:
		f.CardholderName = v
	case FieldPromoCode:
		f.PromoCode = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
