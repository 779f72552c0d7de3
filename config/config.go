package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full environment of the service, processed once at
// startup. Defaults mirror the production storefront.
type Config struct {
	Port        string `default:"8080"`
	Environment string `default:"development"`
	UploadsDir  string `split_words:"true" default:"./uploads"`

	DatabaseURL string `split_words:"true"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"branded_in_grace"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RedisAddr string `envconfig:"REDIS_ADDR"` // empty disables the product cache

	Checkout CheckoutConfig `split_words:"true"`
	Mpesa    MpesaConfig
}

// CheckoutConfig fixes the price-breakdown constants and the order
// creation timing (spec'd as a deployment choice, not a guess).
type CheckoutConfig struct {
	FreeShippingThreshold float64 `split_words:"true" default:"10000"` // KES
	ShippingFlatFee       float64 `split_words:"true" default:"500"`   // KES
	TaxRate               float64 `split_words:"true" default:"0.16"`  // VAT
	DeferOrder            bool    `envconfig:"CHECKOUT_DEFER_ORDER" default:"false"`
}

// MpesaConfig carries the Daraja credentials and the poller tuning.
type MpesaConfig struct {
	ConsumerKey    string `envconfig:"MPESA_CONSUMER_KEY"`
	ConsumerSecret string `envconfig:"MPESA_CONSUMER_SECRET"`
	Shortcode      string `envconfig:"MPESA_SHORTCODE" default:"174379"`
	Passkey        string `envconfig:"MPESA_PASSKEY"`
	BaseURL        string `envconfig:"MPESA_BASE_URL" default:"https://sandbox.safaricom.co.ke"`
	CallbackURL    string `envconfig:"MPESA_CALLBACK_URL"`

	PollIntervalSeconds int `envconfig:"MPESA_POLL_INTERVAL_SECONDS" default:"10"`
	PollMaxAttempts     int `envconfig:"MPESA_POLL_MAX_ATTEMPTS" default:"30"`
}

// Configured reports whether the gateway credentials are present. The
// STK push endpoints refuse to start a payment without them.
func (m MpesaConfig) Configured() bool {
	return m.ConsumerKey != "" && m.ConsumerSecret != "" && m.Passkey != ""
}

// Load processes the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// DSN builds the Postgres connection string, preferring DATABASE_URL
// when present (managed hosts hand out a single URL).
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
