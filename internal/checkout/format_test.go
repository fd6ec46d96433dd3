package checkout

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		field Field
		raw   string
		want  string
	}{
		{FieldCardNumber, "4111111111111111", "4111 1111 1111 1111"},
		{FieldCardNumber, "4111 11 11111111 11", "4111 1111 1111 1111"},
		{FieldCardNumber, "41111", "4111 1"},
		{FieldCardNumber, "4111", "4111"},
		{FieldExpiryDate, "1229", "12/29"},
		{FieldExpiryDate, "12/29", "12/29"},
		{FieldExpiryDate, "1", "1"},
		{FieldExpiryDate, "12", "12"},
		{FieldCVV, "1a2b3", "123"},
		{FieldZipCode, "78-70123", "78701"},
		{FieldPhone, "(555) 123-4567 ext 9", "5551234567"},
		{FieldEmail, "  Jane@Example.com ", "  Jane@Example.com "},
		{FieldCity, "Austin", "Austin"},
	}
	for _, tc := range cases {
		if got := Format(tc.field, tc.raw); got != tc.want {
			t.Fatalf("Format(%s, %q) = %q, want %q", tc.field, tc.raw, got, tc.want)
		}
	}
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"", "4111111111111111", "4111 1111 1111 1111 99", "12345abc 6789",
		"1229", "12/2", "(555) 123-4567", "9876543210123", " x ",
	}
	for _, f := range Fields() {
		for _, in := range inputs {
			once := Format(f, in)
			if twice := Format(f, once); twice != once {
				t.Fatalf("Format not idempotent for %s(%q): %q then %q", f, in, once, twice)
			}
		}
	}
}
