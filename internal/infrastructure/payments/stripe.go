package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeConfig holds the keys from the Stripe dashboard.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// Stripe creates PaymentIntents and verifies Stripe webhooks.
type Stripe struct {
	cfg    StripeConfig
	api    *client.API
	logger zerolog.Logger
}

var _ ports.PaymentProvider = (*Stripe)(nil)

// NewStripe creates a new Stripe provider. backends may be nil.
func NewStripe(cfg StripeConfig, backends *stripe.Backends, logger zerolog.Logger) (*Stripe, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &Stripe{cfg: cfg, api: api, logger: logger}, nil
}

func (s *Stripe) Name() string { return domain.ProviderStripe }

func (s *Stripe) CreateOrder(ctx context.Context, order *domain.Order) (*domain.ProviderCheckout, error) {
	amount := order.AmountMinor()
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(strings.ToLower(domain.Currency)),
		Description: stripe.String("Order " + order.Number),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID)
	params.AddMetadata("order_number", order.Number)
	params.SetIdempotencyKey(fmt.Sprintf("order-%s-%d", order.ID, amount))

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.logger.Info().Str("orderNumber", order.Number).Str("paymentIntentId", intent.ID).Int64("amount", amount).Msg("Stripe payment intent created")
	return &domain.ProviderCheckout{
		Provider:        domain.ProviderStripe,
		ProviderOrderID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublicKey:       s.cfg.PublishableKey,
		AmountMinor:     amount,
		Currency:        domain.Currency,
		OrderNumber:     order.Number,
	}, nil
}

// VerifyPayment retrieves the PaymentIntent and requires it to have succeeded.
func (s *Stripe) VerifyPayment(ctx context.Context, req domain.VerifyRequest) (*domain.Verification, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := s.api.PaymentIntents.Get(req.ProviderOrderID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &domain.Verification{
			ProviderOrderID: intent.ID,
			Reason:          "payment intent is " + string(intent.Status),
		}, nil
	}
	return &domain.Verification{
		Verified:        true,
		TransactionID:   intentTransactionID(intent),
		ProviderOrderID: intent.ID,
	}, nil
}

func (s *Stripe) ParseWebhook(_ context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	signature := headers.Get("Stripe-Signature")
	if s.cfg.WebhookSecret == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing webhook signature", domain.ErrSignatureInvalid)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignatureInvalid, err)
	}

	event := &domain.PaymentEvent{
		ID:         ev.ID,
		Provider:   domain.ProviderStripe,
		Type:       string(ev.Type),
		Outcome:    domain.OutcomeIgnored,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	switch ev.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &intent); err != nil {
			return nil, domain.NewValidationError("payload", "Malformed payment intent.")
		}
		event.ProviderOrderID = intent.ID
		if ev.Type == "payment_intent.succeeded" {
			event.Outcome = domain.OutcomePaid
			event.PaymentID = intentTransactionID(&intent)
			amount := intent.AmountReceived
			if amount == 0 {
				amount = intent.Amount
			}
			event.AmountMinor = &amount
		} else {
			event.Outcome = domain.OutcomeFailed
			if intent.LastPaymentError != nil {
				event.FailureReason = intent.LastPaymentError.Msg
			}
		}
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &charge); err != nil {
			return nil, domain.NewValidationError("payload", "Malformed charge.")
		}
		event.Outcome = domain.OutcomeRefunded
		event.PaymentID = charge.ID
		if charge.PaymentIntent != nil {
			event.ProviderOrderID = charge.PaymentIntent.ID
		}
	}
	return event, nil
}

func intentTransactionID(intent *stripe.PaymentIntent) string {
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		return intent.LatestCharge.ID
	}
	return intent.ID
}
