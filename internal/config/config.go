package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnvVar names an optional YAML file applied before the
// environment overrides.
const ConfigFileEnvVar = "CHECKOUT_CONFIG"

// Session store backends.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Pricing holds the fixed charges as decimal strings ("9.99").
type Pricing struct {
	Shipping    string `yaml:"shipping"`
	TaxRate     string `yaml:"tax_rate"`
	PlatformFee string `yaml:"platform_fee"`
}

// CartItem is the YAML form of a cart line.
type CartItem struct {
	ID            int    `yaml:"id"`
	Name          string `yaml:"name"`
	Price         string `yaml:"price"`
	OriginalPrice string `yaml:"original_price"`
	Quantity      int    `yaml:"quantity"`
	Image         string `yaml:"image"`
}

// Config is everything the API, worker and CLI read at startup.
type Config struct {
	RunLocal bool   `yaml:"run_local"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	SessionStore          string        `yaml:"session_store"`
	SessionsTable         string        `yaml:"sessions_table"`
	SessionTTL            time.Duration `yaml:"session_ttl"`
	IdempotencyTable      string        `yaml:"idempotency_table"`
	IdempotencyTTL        time.Duration `yaml:"idempotency_ttl"`
	ConfirmationsQueueURL string        `yaml:"confirmations_queue_url"`
	MetricsNamespace      string        `yaml:"metrics_namespace"`

	SubmitDelay time.Duration `yaml:"submit_delay"`
	Pricing     Pricing       `yaml:"pricing"`
	Cart        []CartItem    `yaml:"cart"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:           "8080",
		SessionStore:   StoreMemory,
		SessionTTL:     24 * time.Hour,
		IdempotencyTTL: 48 * time.Hour,
		SubmitDelay:    checkout.DefaultSubmitDelay,
		Pricing: Pricing{
			Shipping:    "9.99",
			TaxRate:     "0.08",
			PlatformFee: "3.99",
		},
	}
}

// Load applies defaults, then the file named by CHECKOUT_CONFIG, then the
// environment, and validates the result.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(ConfigFileEnvVar); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":                    &c.Port,
		"CHECKOUT_LOG_LEVEL":      &c.LogLevel,
		"SESSION_STORE":           &c.SessionStore,
		"SESSIONS_TABLE":          &c.SessionsTable,
		"IDEMPOTENCY_TABLE":       &c.IdempotencyTable,
		"CONFIRMATIONS_QUEUE_URL": &c.ConfirmationsQueueURL,
		"METRICS_NAMESPACE":       &c.MetricsNamespace,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	dur := map[string]*time.Duration{
		"SESSION_TTL":     &c.SessionTTL,
		"IDEMPOTENCY_TTL": &c.IdempotencyTTL,
		"SUBMIT_DELAY":    &c.SubmitDelay,
	}
	for name, dst := range dur {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v := os.Getenv("RUN_LOCAL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_LOCAL: %w", err)
		}
		c.RunLocal = b
	}
	return nil
}

// Validate checks the combinations the entrypoints rely on.
func (c Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory:
	case StoreDynamoDB:
		if c.SessionsTable == "" {
			return fmt.Errorf("session_store %q requires sessions_table", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown session_store %q", c.SessionStore)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("submit_delay must not be negative")
	}
	if _, err := c.Rates(); err != nil {
		return err
	}
	if _, err := c.CheckoutCart(); err != nil {
		return err
	}
	return nil
}

// Rates converts the pricing section.
func (c Config) Rates() (checkout.Rates, error) {
	var r checkout.Rates
	var err error
	if r.Shipping, err = parseMoney("pricing.shipping", c.Pricing.Shipping); err != nil {
		return r, err
	}
	if r.TaxRate, err = parseMoney("pricing.tax_rate", c.Pricing.TaxRate); err != nil {
		return r, err
	}
	if r.PlatformFee, err = parseMoney("pricing.platform_fee", c.Pricing.PlatformFee); err != nil {
		return r, err
	}
	return r, nil
}

// CheckoutCart converts the cart section, falling back to the demo cart
// when none is configured.
func (c Config) CheckoutCart() (checkout.Cart, error) {
	if len(c.Cart) == 0 {
		return checkout.DefaultCart(), nil
	}
	cart := make(checkout.Cart, 0, len(c.Cart))
	for i, it := range c.Cart {
		price, err := parseMoney(fmt.Sprintf("cart[%d].price", i), it.Price)
		if err != nil {
			return nil, err
		}
		orig, err := parseMoney(fmt.Sprintf("cart[%d].original_price", i), it.OriginalPrice)
		if err != nil {
			return nil, err
		}
		cart = append(cart, checkout.CartItem{
			ID:            it.ID,
			Name:          it.Name,
			Price:         price,
			OriginalPrice: orig,
			Quantity:      it.Quantity,
			Image:         it.Image,
		})
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	return cart, nil
}

func parseMoney(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}
