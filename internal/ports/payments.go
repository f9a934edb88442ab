package ports

import (
	"context"
	"net/http"
	"time"

	"fishy-friend-storefront/internal/domain"
)

// PaymentProvider is a payment gateway adapter.
type PaymentProvider interface {
	Name() string
	// CreateOrder registers the order's final amount with the provider.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.ProviderCheckout, error)
	// VerifyPayment confirms a client-reported payment.
	VerifyPayment(ctx context.Context, req domain.VerifyRequest) (*domain.Verification, error)
	// ParseWebhook checks the signature and maps the payload to a
	// provider-neutral event. Signature failures wrap domain.ErrSignatureInvalid.
	ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error)
}

// IdempotencyStore claims keys so that each webhook event is processed once.
type IdempotencyStore interface {
	// Claim reports true the first time key is seen within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so that a retried delivery is processed again.
	Release(ctx context.Context, key string) error
}

// CheckoutSessionStore keeps the coupon a customer applied until checkout.
type CheckoutSessionStore interface {
	GetSession(ctx context.Context, customerID string) (*domain.CheckoutSession, error)
	SaveSession(ctx context.Context, session *domain.CheckoutSession) error
	DeleteSession(ctx context.Context, customerID string) error
}
