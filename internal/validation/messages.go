package validation

import "fmt"

type fieldMessages struct {
	required string
	invalid  string
}

var messages = map[string]fieldMessages{
	"email":          {"Email is required", "Email is invalid"},
	"phone":          {"Phone number is required", "Phone number must be 10 digits"},
	"companyName":    {"Company name is required", "Company name is invalid"},
	"gstNumber":      {"GST number is required", "Invalid GST number format"},
	"firstName":      {"First name is required", "First name is invalid"},
	"lastName":       {"Last name is required", "Last name is invalid"},
	"address":        {"Address is required", "Address is invalid"},
	"city":           {"City is required", "City is invalid"},
	"zipCode":        {"ZIP code is required", "ZIP code must be 5 digits"},
	"cardNumber":     {"Card number is required", "Card number must be 16 digits"},
	"expiryDate":     {"Expiry date is required", "Expiry date must be in MM/YY format"},
	"cvv":            {"CVV is required", "CVV must be 3 or 4 digits"},
	"cardholderName": {"Cardholder name is required", "Cardholder name is invalid"},
}

func message(field, tag string) string {
	m, ok := messages[field]
	if !ok {
		return fmt.Sprintf("%s failed on %s", field, tag)
	}
	if tag == "required" {
		return m.required
	}
	return m.invalid
}
