// Package config reads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storage backends.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config is everything the commands need to wire the service.
type Config struct {
	Port    string
	Storage string

	MongoURI      string
	MongoDatabase string
	RedisURL      string
	NATSURL       string

	PaymentProvider       string
	MockWebhookSecret     string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	StripeSecretKey       string
	StripePublishableKey  string
	StripeWebhookSecret   string

	StaffTokenHash string
	SiteName       string
	SiteURL        string
	UPIID          string
	SwaggerFile    string

	LowStockThreshold int

	ShopifyShopName    string
	ShopifyAccessToken string
	ShopifyAPIKey      string
	ShopifyAPISecret   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ShutdownTimeout time.Duration
}

// Load reads .env when present and then the process environment.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: .env file not found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:    get("PORT", "8080"),
		Storage: strings.ToLower(get("STORAGE", StorageMongo)),

		MongoURI:      get("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: get("MONGODB_DATABASE", "fishy_friend"),
		RedisURL:      get("REDIS_URL", ""),
		NATSURL:       get("NATS_URL", ""),

		PaymentProvider:       strings.ToLower(get("PAYMENT_PROVIDER", "")),
		MockWebhookSecret:     get("MOCK_WEBHOOK_SECRET", ""),
		RazorpayKeyID:         get("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     get("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: get("RAZORPAY_WEBHOOK_SECRET", ""),
		StripeSecretKey:       get("STRIPE_SECRET_KEY", ""),
		StripePublishableKey:  get("STRIPE_PUBLISHABLE_KEY", ""),
		StripeWebhookSecret:   get("STRIPE_WEBHOOK_SECRET", ""),

		StaffTokenHash: get("STAFF_TOKEN_HASH", ""),
		SiteName:       get("SITE_NAME", "Fishy Friend Aquatics"),
		SiteURL:        get("SITE_URL", "http://localhost:8080"),
		UPIID:          get("UPI_ID", ""),
		SwaggerFile:    get("SWAGGER_FILE", "./docs/swagger.json"),

		ShopifyShopName:    get("SHOPIFY_SHOP_NAME", ""),
		ShopifyAccessToken: get("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIKey:      get("SHOPIFY_API_KEY", ""),
		ShopifyAPISecret:   get("SHOPIFY_API_SECRET", ""),

		SMTPHost:     get("SMTP_HOST", ""),
		SMTPPort:     get("SMTP_PORT", "587"),
		SMTPUsername: get("SMTP_USERNAME", ""),
		SMTPPassword: get("SMTP_PASSWORD", ""),
		SMTPFrom:     get("SMTP_FROM", ""),
	}

	timeout, err := time.ParseDuration(get("SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	threshold, err := strconv.Atoi(get("LOW_STOCK_THRESHOLD", strconv.Itoa(domain.DefaultLowStockThreshold)))
	if err != nil || threshold < 0 {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD %q", getenv("LOW_STOCK_THRESHOLD"))
	}
	cfg.LowStockThreshold = threshold

	if cfg.PaymentProvider == "" {
		cfg.PaymentProvider = cfg.defaultProvider()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultProvider prefers the gateway whose keys are configured.
func (c *Config) defaultProvider() string {
	switch {
	case c.RazorpayConfigured():
		return domain.ProviderRazorpay
	case c.StripeConfigured():
		return domain.ProviderStripe
	default:
		return domain.ProviderMock
	}
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	switch c.PaymentProvider {
	case domain.ProviderMock:
	case domain.ProviderRazorpay:
		if !c.RazorpayConfigured() {
			return errors.New("PAYMENT_PROVIDER is razorpay but RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET is missing")
		}
	case domain.ProviderStripe:
		if !c.StripeConfigured() {
			return errors.New("PAYMENT_PROVIDER is stripe but STRIPE_SECRET_KEY is missing")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	return nil
}

func (c *Config) RazorpayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func (c *Config) StripeConfigured() bool { return c.StripeSecretKey != "" }

func (c *Config) ShopifyConfigured() bool {
	return c.ShopifyShopName != "" && c.ShopifyAccessToken != ""
}

func (c *Config) SMTPConfigured() bool { return c.SMTPHost != "" }
