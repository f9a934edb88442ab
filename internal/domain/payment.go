package domain

import "time"

// Provider names accepted by the payment registry.
const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
	ProviderMock     = "mock"
	ProviderUPI      = "upi"
)

// PaymentOutcome is what a provider event means for an order.
type PaymentOutcome string

const (
	OutcomePaid     PaymentOutcome = "paid"
	OutcomeFailed   PaymentOutcome = "failed"
	OutcomeRefunded PaymentOutcome = "refunded"
	OutcomeIgnored  PaymentOutcome = "ignored"
)

// PaymentEvent is a verified, provider-neutral webhook event.
type PaymentEvent struct {
	ID              string         `json:"id"`
	Provider        string         `json:"provider"`
	Type            string         `json:"type"`
	Outcome         PaymentOutcome `json:"outcome"`
	ProviderOrderID string         `json:"provider_order_id"`
	PaymentID       string         `json:"payment_id,omitempty"`
	AmountMinor     *int64         `json:"amount_minor,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	Payload         []byte         `json:"-"`
	ReceivedAt      time.Time      `json:"received_at"`
}

// EventStatus records what happened to a received webhook event.
type EventStatus string

const (
	EventProcessed EventStatus = "processed"
	EventRejected  EventStatus = "rejected"
	EventIgnored   EventStatus = "ignored"
	EventFailed    EventStatus = "failed"
)

// PaymentEventRecord is the persisted log entry for a webhook event.
type PaymentEventRecord struct {
	EventID    string      `json:"event_id"`
	Provider   string      `json:"provider"`
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id,omitempty"`
	Status     EventStatus `json:"status"`
	Detail     string      `json:"detail,omitempty"`
	ReceivedAt time.Time   `json:"received_at"`
}

// ProviderCheckout is returned to the client to open the provider's checkout.
type ProviderCheckout struct {
	Provider        string `json:"provider"`
	ProviderOrderID string `json:"provider_order_id"`
	ClientSecret    string `json:"client_secret,omitempty"`
	PublicKey       string `json:"public_key,omitempty"`
	AmountMinor     int64  `json:"amount"`
	Currency        string `json:"currency"`
	OrderNumber     string `json:"order_number"`
}

// VerifyRequest carries the client-side confirmation of a payment.
type VerifyRequest struct {
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	PaymentID       string `json:"payment_id"`
	Signature       string `json:"signature"`
}

// Verification is the provider's answer to a VerifyRequest.
type Verification struct {
	Verified        bool   `json:"verified"`
	TransactionID   string `json:"transaction_id,omitempty"`
	ProviderOrderID string `json:"provider_order_id,omitempty"`
	Reason          string `json:"reason,omitempty"`
}
