package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"CHECKOUT_CONFIG", "SESSION_STORE", "SUBMIT_DELAY", "RUN_LOCAL"} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuote(t *testing.T) {
	out, err := run(t, "quote")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	for _, want := range []string{"Price (2 items)  181.54", "Total Amount      210.04", "(25% off)", "(31% off)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "quote", "--coupon", "freeship", "--format", "json")
	if err != nil {
		t.Fatalf("quote json: %v", err)
	}
	if !strings.Contains(out, `"discount": "9.99"`) {
		t.Fatalf("json output:\n%s", out)
	}

	if _, err := run(t, "quote", "--coupon", "NOPE"); err == nil {
		t.Fatalf("unknown coupon should fail")
	}
}

func TestCoupons(t *testing.T) {
	out, _ := run(t, "coupons")
	if strings.Count(out, "\n") != 6 || !strings.HasPrefix(out, "BONZI25") {
		t.Fatalf("coupons output:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "--section", "contact", "--set", "email=jane@example.com", "--set", "phone=5551234567")
	if err != nil || !strings.Contains(out, "Contact Information: ok") {
		t.Fatalf("valid contact: %v\n%s", err, out)
	}

	out, err = run(t, "validate", "--section", "delivery", "--set", "zipCode=123")
	if err == nil {
		t.Fatalf("invalid delivery should fail")
	}
	if !strings.Contains(out, "zipCode: ZIP code must be 5 digits") || !strings.Contains(out, "city: City is required") {
		t.Fatalf("delivery output:\n%s", out)
	}

	if _, err := run(t, "validate", "--set", "nickname=x"); err == nil {
		t.Fatalf("unknown field should fail")
	}
}

func TestFormat(t *testing.T) {
	out, err := run(t, "format", "cardNumber", "4111111111111111")
	if err != nil || strings.TrimSpace(out) != "4111 1111 1111 1111" {
		t.Fatalf("format: %v %q", err, out)
	}
}
