package checkout

import "testing"

func validContact() Form {
	f := NewForm()
	f.Email = "jane@example.com"
	f.Phone = "5551234567"
	return f
}

func TestValidate_Contact(t *testing.T) {
	f := NewForm()
	errs := Validate(SectionContact, f)
	if errs[FieldEmail] != "Email is required" || errs[FieldPhone] != "Phone number is required" {
		t.Fatalf("unexpected errors: %v", errs)
	}

	f = validContact()
	if errs := Validate(SectionContact, f); len(errs) != 0 {
		t.Fatalf("expected clean contact, got %v", errs)
	}

	f.HasGST = true
	errs = Validate(SectionContact, f)
	if _, ok := errs[FieldCompanyName]; !ok {
		t.Fatalf("expected companyName error, got %v", errs)
	}
	if _, ok := errs[FieldGSTNumber]; !ok {
		t.Fatalf("expected gstNumber error, got %v", errs)
	}
}

func TestValidate_Delivery(t *testing.T) {
	f := NewForm()
	errs := Validate(SectionDelivery, f)
	for _, field := range []Field{FieldFirstName, FieldLastName, FieldAddress, FieldCity, FieldZipCode} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	if _, ok := errs[FieldLocality]; ok {
		t.Fatalf("locality is not validated")
	}

	f.FirstName, f.LastName, f.Address, f.City, f.ZipCode = "Jane", "Doe", "1 Main St", "Austin", "78701"
	if errs := Validate(SectionDelivery, f); len(errs) != 0 {
		t.Fatalf("expected clean delivery, got %v", errs)
	}
}

func TestValidate_PaymentOnlyForCards(t *testing.T) {
	f := NewForm()
	if errs := Validate(SectionPayment, f); len(errs) != 4 {
		t.Fatalf("expected 4 card errors, got %v", errs)
	}
	f.PaymentMethod = PaymentCOD
	if errs := Validate(SectionPayment, f); len(errs) != 0 {
		t.Fatalf("expected no errors for cod, got %v", errs)
	}
}

func TestValidate_SummaryAlwaysClean(t *testing.T) {
	if errs := Validate(SectionSummary, Form{}); len(errs) != 0 {
		t.Fatalf("summary produced errors: %v", errs)
	}
}

func TestValidate_FormatMessages(t *testing.T) {
	contact := validContact()
	contact.HasGST = true
	contact.CompanyName = "Bonzi Traders"
	contact.GSTNumber = "22AAAAA0000A1X5"

	payment := NewForm()
	payment.CardNumber = "4111 1111 1111 1111"
	payment.CardholderName = "Jane Doe"
	payment.ExpiryDate = "00/29"
	payment.CVV = "12345"

	tests := []struct {
		name    string
		section Section
		form    Form
		field   Field
		want    string
	}{
		{"gst number shape", SectionContact, contact, FieldGSTNumber, "Invalid GST number format"},
		{"expiry month zero", SectionPayment, payment, FieldExpiryDate, "Expiry date must be in MM/YY format"},
		{"five digit cvv", SectionPayment, payment, FieldCVV, "CVV must be 3 or 4 digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.section, tt.form)
			if got := errs[tt.field]; got != tt.want {
				t.Fatalf("%s error = %q, want %q (all: %v)", tt.field, got, tt.want, errs)
			}
		})
	}

	if errs := Validate(SectionContact, contact); len(errs) != 1 {
		t.Fatalf("only gstNumber should fail, got %v", errs)
	}
	contact.GSTNumber = "22AAAAA0000A1Z5"
	if errs := Validate(SectionContact, contact); len(errs) != 0 {
		t.Fatalf("valid GSTIN rejected: %v", errs)
	}
}
