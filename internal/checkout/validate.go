package checkout

import "github.com/imrishuroy/bonzicart-checkout/internal/validation"

var sectionValidator = validation.New()

// Validate checks the fields that belong to section and returns one message
// per failing field. The summary section, and the payment section for
// non-card methods, always validate clean.
func Validate(section Section, f Form) ErrorMap {
	var target interface{}
	switch section {
	case SectionContact:
		target = validation.Contact{
			Email:       f.Email,
			Phone:       f.Phone,
			HasGST:      f.HasGST,
			CompanyName: f.CompanyName,
			GSTNumber:   f.GSTNumber,
		}
	case SectionDelivery:
		target = validation.Delivery{
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Address:   f.Address,
			City:      f.City,
			ZipCode:   f.ZipCode,
		}
	case SectionPayment:
		if f.PaymentMethod != PaymentCard {
			return ErrorMap{}
		}
		target = validation.Payment{
			CardNumber:     f.CardNumber,
			ExpiryDate:     f.ExpiryDate,
			CVV:            f.CVV,
			CardholderName: f.CardholderName,
		}
	default:
		return ErrorMap{}
	}

	out := ErrorMap{}
	for name, msg := range validation.Check(sectionValidator, target) {
		out[Field(name)] = msg
	}
	return out
}
