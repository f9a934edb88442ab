// Package shopify lists the storefront catalog on a Shopify store through
// the Admin REST API.
package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fishy-friend-storefront/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// RetryConfig controls how throttled or failing Admin API calls are retried.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries three times starting at half a second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 5 * time.Second}
}

// Config identifies the store and the custom app token used to call it.
type Config struct {
	APIKey      string
	APISecret   string
	ShopName    string
	AccessToken string
}

type client struct {
	api         *goshopify.Client
	shop        string
	retryConfig RetryConfig
	logger      zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(cfg Config, retryConfig RetryConfig, logger zerolog.Logger) (ports.ShopifyClient, error) {
	if cfg.ShopName == "" || cfg.AccessToken == "" {
		return nil, errors.New("shopify shop name and access token are required")
	}
	app := goshopify.App{
		ApiKey:    cfg.APIKey,
		ApiSecret: cfg.APISecret,
	}
	api, err := goshopify.NewClient(app, cfg.ShopName, cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client{api: api, shop: cfg.ShopName, retryConfig: retryConfig, logger: logger}, nil
}

// GetProduct returns nil when the product no longer exists on the store.
func (c *client) GetProduct(ctx context.Context, productID uint64) (*goshopify.Product, error) {
	var product *goshopify.Product
	err := c.retry(ctx, "get product", func() error {
		var err error
		product, err = c.api.Product.Get(ctx, productID, nil)
		return err
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (c *client) CreateProduct(ctx context.Context, product *goshopify.Product) (*goshopify.Product, error) {
	var created *goshopify.Product
	err := c.retry(ctx, "create product", func() error {
		var err error
		created, err = c.api.Product.Create(ctx, *product)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (c *client) UpdateProduct(ctx context.Context, product *goshopify.Product) (*goshopify.Product, error) {
	var updated *goshopify.Product
	err := c.retry(ctx, "update product", func() error {
		var err error
		updated, err = c.api.Product.Update(ctx, *product)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (c *client) retry(ctx context.Context, op string, call func() error) error {
	return withRetry(ctx, c.retryConfig, call, func(attempt int, wait time.Duration, err error) {
		c.logger.Warn().
			Err(err).
			Str("shop", c.shop).
			Str("operation", op).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Shopify call failed, retrying")
	})
}

// withRetry runs call until it succeeds, returns a permanent error or runs
// out of attempts. Throttled calls wait for the Retry-After the API sent.
func withRetry(ctx context.Context, cfg RetryConfig, call func() error, onRetry func(int, time.Duration, error)) error {
	attempts := max(cfg.MaxAttempts, 1)
	backoff := cfg.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = call(); err == nil || !retryable(err) || attempt >= attempts {
			return err
		}
		wait := backoff
		var rateErr goshopify.RateLimitError
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			wait = time.Duration(rateErr.RetryAfter) * time.Second
		}
		if cfg.MaxBackoff > 0 && wait > cfg.MaxBackoff {
			wait = cfg.MaxBackoff
		}
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func isNotFound(err error) bool {
	var respErr goshopify.ResponseError
	return errors.As(err, &respErr) && respErr.Status == http.StatusNotFound
}
