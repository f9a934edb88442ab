// Package payments adapts payment gateways to ports.PaymentProvider.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/go-resty/resty/v2"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/rs/zerolog"
)

const (
	razorpayAPI             = "https://api.razorpay.com/v1"
	razorpaySignatureHeader = "X-Razorpay-Signature"
	razorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

// RazorpayConfig holds the API keys from the Razorpay dashboard.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// Razorpay talks to the Razorpay Orders API and verifies its signatures.
type Razorpay struct {
	cfg    RazorpayConfig
	http   *resty.Client
	logger zerolog.Logger
}

var _ ports.PaymentProvider = (*Razorpay)(nil)

// NewRazorpay creates a new Razorpay provider
func NewRazorpay(cfg RazorpayConfig, logger zerolog.Logger) (*Razorpay, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay key id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = razorpayAPI
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &Razorpay{cfg: cfg, http: client, logger: logger}, nil
}

func (r *Razorpay) Name() string { return domain.ProviderRazorpay }

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (r *Razorpay) CreateOrder(ctx context.Context, order *domain.Order) (*domain.ProviderCheckout, error) {
	amount := order.AmountMinor()
	var created razorpayOrder
	var apiErr razorpayError
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"amount":          amount,
			"currency":        domain.Currency,
			"receipt":         order.Number,
			"payment_capture": 1,
			"notes":           map[string]string{"order_id": order.ID, "order_number": order.Number},
		}).
		SetResult(&created).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to create razorpay order: %s %s", resp.Status(), apiErr.Error.Description)
	}

	r.logger.Info().Str("orderNumber", order.Number).Str("razorpayOrderId", created.ID).Int64("amount", amount).Msg("Razorpay order created")
	return &domain.ProviderCheckout{
		Provider:        domain.ProviderRazorpay,
		ProviderOrderID: created.ID,
		PublicKey:       r.cfg.KeyID,
		AmountMinor:     amount,
		Currency:        domain.Currency,
		OrderNumber:     order.Number,
	}, nil
}

// VerifyPayment checks the checkout signature, HMAC-SHA256 of
// "order_id|payment_id" keyed with the API secret.
func (r *Razorpay) VerifyPayment(_ context.Context, req domain.VerifyRequest) (*domain.Verification, error) {
	if req.PaymentID == "" || req.Signature == "" {
		return nil, fmt.Errorf("%w: payment id and signature are required", domain.ErrSignatureInvalid)
	}
	attributes := map[string]interface{}{
		"razorpay_order_id":   req.ProviderOrderID,
		"razorpay_payment_id": req.PaymentID,
	}
	if !utils.VerifyPaymentSignature(attributes, req.Signature, r.cfg.KeySecret) {
		return nil, fmt.Errorf("%w: checkout signature mismatch", domain.ErrSignatureInvalid)
	}
	return &domain.Verification{
		Verified:        true,
		TransactionID:   req.PaymentID,
		ProviderOrderID: req.ProviderOrderID,
	}, nil
}

type razorpayWebhook struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity razorpayPayment `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID         string `json:"id"`
				AmountPaid int64  `json:"amount_paid"`
			} `json:"entity"`
		} `json:"order"`
		Refund *struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
				Amount    int64  `json:"amount"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type razorpayPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	ErrorDescription string `json:"error_description"`
}

// ParseWebhook verifies X-Razorpay-Signature, HMAC-SHA256 of the raw body
// keyed with the webhook secret, before decoding anything.
func (r *Razorpay) ParseWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.PaymentEvent, error) {
	signature := headers.Get(razorpaySignatureHeader)
	if r.cfg.WebhookSecret == "" || signature == "" {
		return nil, fmt.Errorf("%w: missing webhook signature", domain.ErrSignatureInvalid)
	}
	if !utils.VerifyWebhookSignature(string(payload), signature, r.cfg.WebhookSecret) {
		return nil, fmt.Errorf("%w: webhook signature mismatch", domain.ErrSignatureInvalid)
	}

	var hook razorpayWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, domain.NewValidationError("payload", "Malformed webhook payload.")
	}

	event := &domain.PaymentEvent{
		Provider:   domain.ProviderRazorpay,
		Type:       hook.Event,
		Outcome:    domain.OutcomeIgnored,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
	var payment *razorpayPayment
	if hook.Payload.Payment != nil {
		payment = &hook.Payload.Payment.Entity
		event.PaymentID = payment.ID
		event.ProviderOrderID = payment.OrderID
	}

	switch hook.Event {
	case "payment.captured":
		event.Outcome = domain.OutcomePaid
		if payment != nil {
			event.AmountMinor = &payment.Amount
		}
	case "order.paid":
		event.Outcome = domain.OutcomePaid
		if hook.Payload.Order != nil {
			event.ProviderOrderID = hook.Payload.Order.Entity.ID
			event.AmountMinor = &hook.Payload.Order.Entity.AmountPaid
		}
	case "payment.failed":
		event.Outcome = domain.OutcomeFailed
		if payment != nil {
			event.FailureReason = payment.ErrorDescription
		}
	case "refund.processed":
		event.Outcome = domain.OutcomeRefunded
		if hook.Payload.Refund != nil {
			refund := hook.Payload.Refund.Entity
			event.PaymentID = refund.PaymentID
			if event.ProviderOrderID == "" && refund.PaymentID != "" {
				fetched, err := r.fetchPayment(ctx, refund.PaymentID)
				if err != nil {
					return nil, err
				}
				event.ProviderOrderID = fetched.OrderID
			}
		}
	}

	event.ID = headers.Get(razorpayEventIDHeader)
	if event.ID == "" {
		event.ID = fmt.Sprintf("%s:%s:%d", hook.Event, event.PaymentID, hook.CreatedAt)
	}
	return event, nil
}

func (r *Razorpay) fetchPayment(ctx context.Context, paymentID string) (*razorpayPayment, error) {
	var payment razorpayPayment
	resp, err := r.http.R().SetContext(ctx).SetResult(&payment).Get("/payments/" + paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch razorpay payment: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch razorpay payment: %s", resp.Status())
	}
	return &payment, nil
}

// Sign returns the hex HMAC-SHA256 of message keyed with secret, the form
// Razorpay and the mock provider use for signature headers.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
