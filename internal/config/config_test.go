package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		ConfigFileEnvVar, "RUN_LOCAL", "PORT", "CHECKOUT_LOG_LEVEL", "SESSION_STORE",
		"SESSIONS_TABLE", "IDEMPOTENCY_TABLE", "CONFIRMATIONS_QUEUE_URL",
		"METRICS_NAMESPACE", "SESSION_TTL", "IDEMPOTENCY_TTL", "SUBMIT_DELAY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionStore != StoreMemory || cfg.Port != "8080" || cfg.SubmitDelay != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	r, _ := cfg.Rates()
	if !r.Shipping.Equal(decimal.RequireFromString("9.99")) || !r.TaxRate.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("rates = %+v", r)
	}
	cart, _ := cfg.CheckoutCart()
	if len(cart) != 2 {
		t.Fatalf("expected the demo cart, got %d items", len(cart))
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "checkout.yaml")
	yml := `
port: "9000"
session_store: dynamodb
sessions_table: sessions-file
submit_delay: 500ms
pricing:
  shipping: "5.00"
  tax_rate: "0.10"
  platform_fee: "0"
cart:
  - id: 7
    name: Lamp
    price: "10.00"
    original_price: "12.50"
    quantity: 3
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(ConfigFileEnvVar, path)
	t.Setenv("SESSIONS_TABLE", "sessions-env")
	t.Setenv("RUN_LOCAL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.SessionsTable != "sessions-env" || !cfg.RunLocal {
		t.Fatalf("precedence wrong: %+v", cfg)
	}
	if cfg.SubmitDelay != 500*time.Millisecond {
		t.Fatalf("submit delay = %v", cfg.SubmitDelay)
	}
	r, _ := cfg.Rates()
	if !r.Shipping.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("shipping = %s", r.Shipping)
	}
	cart, _ := cfg.CheckoutCart()
	if len(cart) != 1 || cart[0].Quantity != 3 || !cart[0].OriginalPrice.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("cart = %+v", cart)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"dynamo without table": {"SESSION_STORE": "dynamodb"},
		"unknown store":        {"SESSION_STORE": "redis"},
		"bad duration":         {"SUBMIT_DELAY": "soon"},
		"bad bool":             {"RUN_LOCAL": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCheckoutCart_RejectsPriceAboveOriginal(t *testing.T) {
	cfg := Default()
	cfg.Cart = []CartItem{{ID: 1, Name: "x", Price: "20", OriginalPrice: "10", Quantity: 1}}
	if _, err := cfg.CheckoutCart(); err == nil {
		t.Fatalf("expected cart validation error")
	}
}
