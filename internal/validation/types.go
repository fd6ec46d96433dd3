package validation

// Contact is the contact section as seen by the validator.
// GST fields are checked by a struct-level rule because they only apply
// when HasGST is set.
type Contact struct {
	Email       string `json:"email" validate:"required,email_shape"`
	Phone       string `json:"phone" validate:"required,phone10"`
	HasGST      bool   `json:"hasGST"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`
}

// Delivery is the delivery address section.
type Delivery struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required,zip5"`
}

// Payment is the card payment section. Other payment methods carry no fields.
type Payment struct {
	CardNumber     string `json:"cardNumber" validate:"required,card16"`
	ExpiryDate     string `json:"expiryDate" validate:"required,expiry"`
	CVV            string `json:"cvv" validate:"required,cvv"`
	CardholderName string `json:"cardholderName" validate:"required"`
}

// FieldsRequest is the payload for PATCH /checkout/sessions/:id/fields
type FieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"` // field name -> raw input
}

// GSTRequest is the payload for PUT /checkout/sessions/:id/gst
type GSTRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// CouponRequest is the payload for POST /checkout/sessions/:id/coupon
type CouponRequest struct {
	Code string `json:"code" validate:"required"`
}
